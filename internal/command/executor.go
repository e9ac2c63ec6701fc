package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"slices"
	"time"
)

// Default time the executor waits for the child's inherited descriptors to
// close after the child itself has exited or been killed.
const DefaultWaitDelay = 2 * time.Second

// Normalized outcome of a successful external invocation.
type Result struct {
	ExitCode int    // Always 0 for results returned by [Executor.Run].
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
}

// Runs external programs. Implemented by [Executor]; consumers accept this
// interface so tests can substitute an in-memory fake.
type Runner interface {
	Run(ctx context.Context, program string, args ...string) (*Result, error)
}

// Creates the [exec.Cmd] for an invocation.
//
// Implementations must build the command with [exec.CommandContext] so the
// executor can install its own cancellation. Tests replace it to run a helper
// process instead of the real program.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Configures an [Executor].
type Option func(*Executor)

// Replaces the function used to build commands.
func WithCommandFunc(fn CommandFunc) Option {
	return func(e *Executor) {
		e.command = fn
	}
}

// Bounds every invocation by the given duration. Zero disables the deadline.
//
// When the deadline expires the child's process group is killed.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// Overrides [DefaultWaitDelay].
func WithWaitDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.waitDelay = d
	}
}

// Runs external programs synchronously and captures their output.
//
// An Executor holds no per-call state and is safe for concurrent use.
type Executor struct {
	command   CommandFunc   // Builds the exec.Cmd for each invocation.
	timeout   time.Duration // Per-invocation deadline; zero means none.
	waitDelay time.Duration // Grace period for I/O after the child exits.
}

// Creates an executor that resolves programs on $PATH.
func New(opts ...Option) *Executor {
	e := &Executor{
		command:   exec.CommandContext,
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Runs program with args and blocks until it exits.
//
// Returns the captured output on a zero exit status. Any other outcome
// (nonzero exit, program not found, deadline expired, context cancelled)
// returns an [*ExecutionError]. Nothing is retried.
func (e *Executor) Run(ctx context.Context, program string, args ...string) (*Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := e.command(ctx, program, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = e.waitDelay
	killGroupOnCancel(cmd)

	if err := cmd.Run(); err != nil {
		return nil, executionError(ctx, program, args, stderr.String(), err)
	}

	return &Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// Classifies a failed [exec.Cmd.Run].
//
// A context error takes precedence over the exit status because a killed child
// reports a signal exit that says nothing about the program itself.
func executionError(ctx context.Context, program string, args []string, stderr string, err error) *ExecutionError {
	failure := &ExecutionError{
		Program:  program,
		Args:     slices.Clone(args),
		ExitCode: -1,
		Stderr:   stderr,
	}

	var exitErr *exec.ExitError
	isExit := errors.As(err, &exitErr)
	if isExit {
		failure.ExitCode = exitErr.ExitCode()
	}

	switch {
	case ctx.Err() != nil:
		failure.Err = ctx.Err()
	case !isExit:
		failure.Err = err
	}

	return failure
}
