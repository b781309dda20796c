// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Exit reports err on stderr and returns the status main should exit
// with. An [*ExitError] exits silently with its code; other errors
// carrying an ExitCode method use that code after printing; anything
// else exits 1.
func Exit(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var silent *ExitError
	if errors.As(err, &silent) {
		return silent.Code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
