// Package options provides validation helpers shared by the functional
// option sets of the bundler and the command line.
package options

import "errors"

// ValidateSingleInputSource ensures exactly one input source is specified.
// Each element of sources reports whether one source was set. noSourceMsg and
// multiSourceMsg become the error text when none or several are set.
func ValidateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	switch n := CountSet(sources...); {
	case n == 0:
		return errors.New(noSourceMsg)
	case n > 1:
		return errors.New(multiSourceMsg)
	}
	return nil
}

// CountSet returns how many of flags are true.
func CountSet(flags ...bool) int {
	n := 0
	for _, set := range flags {
		if set {
			n++
		}
	}
	return n
}
