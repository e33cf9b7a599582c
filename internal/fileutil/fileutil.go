// Package fileutil holds file permission modes for written output.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for bundled documents, which
// may carry sensitive API data (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600
