// Package ports defines the core interfaces for the application.
package ports

import "context"

// Command describes one external tool invocation.
type Command struct {
	// Name is the executable to run.
	Name string
	// Args are the arguments, not including the executable name.
	Args []string
	// Env holds additional environment variables in "KEY=VALUE" form,
	// appended to the inherited environment.
	Env []string
	// Dir is the working directory. Empty means the caller's cwd.
	Dir string
}

// Result captures the observable outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands and captures their output.
//
// A non-zero exit surfaces as domain.ErrCommandFailed carrying the captured
// stderr; a context deadline surfaces as domain.ErrCommandTimeout. The
// returned Result is populated in both cases so callers can report what the
// tool printed.
//
//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}
