package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// SanitizeOutputPath validates and cleans the path a bundled document is
// written to. It resolves ".." components via filepath.Clean + filepath.Abs,
// rejects paths that resolve to symlinks and requires the parent directory
// to exist. New files in existing directories are accepted. Returns the
// cleaned absolute path.
func SanitizeOutputPath(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("pathutil: cannot resolve absolute path: %w", err)
	}

	info, err := os.Lstat(abs)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("pathutil: refusing to write to symlink: %s", abs)
		}
		return abs, nil
	case os.IsNotExist(err):
		// New file, its directory must exist.
	default:
		return "", fmt.Errorf("pathutil: cannot stat path: %w", err)
	}

	dir := filepath.Dir(abs)
	dirInfo, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("pathutil: output directory %s: %w", dir, err)
	}
	if !dirInfo.IsDir() {
		return "", fmt.Errorf("pathutil: output parent is not a directory: %s", dir)
	}
	return abs, nil
}
