package results

import (
	"errors"
	"fmt"
)

// Sentinel errors for loading a results table.
// These can be checked with errors.Is().
var (
	ErrFile   = errors.New("results file unreadable")
	ErrFormat = errors.New("results file is not a delimited table")
)

// fileError wraps an OS error for the given path.
func fileError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFile, path, err)
}

