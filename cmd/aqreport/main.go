package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Summary printed and charts written
	ExitError   = 1 // Unreadable input, bad table, or chart failure
	ExitUsage   = 2 // Bad arguments or flags
)

// UsageError indicates the command line itself was wrong.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the root command and maps its error to an exit code.
func run(args []string, stdout, stderr io.Writer) int {
	err := execute(args, stdout, stderr)
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintln(stderr, "Error:", err)

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}
	return ExitError
}
