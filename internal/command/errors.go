package command

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExecution = errors.New("command failed")
	ErrDecode    = errors.New("unparsable command output")
)

// Returned when an external program could not be run or exited nonzero.
type ExecutionError struct {
	Program  string   // Program that was invoked.
	Args     []string // Argument vector passed to the program.
	ExitCode int      // Exit status, or -1 if the program never exited normally.
	Stderr   string   // Captured standard error.
	Err      error    // Underlying cause when the program did not exit on its own.
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Program)
	for _, arg := range e.Args {
		if strings.HasPrefix(arg, "-") {
			break
		}
		b.WriteString(" ")
		b.WriteString(arg)
	}

	switch {
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	default:
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}

	if reason := e.Reason(); reason != "" {
		b.WriteString(": ")
		b.WriteString(reason)
	}
	return b.String()
}

// Unwraps to [ErrExecution] and, if present, the underlying cause.
func (e *ExecutionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrExecution, e.Err}
	}
	return []error{ErrExecution}
}

// Returns the trimmed stderr text reported by the program.
func (e *ExecutionError) Reason() string {
	return strings.TrimSpace(e.Stderr)
}

// Returned when a command succeeded but its structured output did not parse.
type DecodeError struct {
	Source string // Human-readable command description, e.g. "podman images".
	Err    error  // Parser error.
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s output: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}
