// Package shell provides an os/exec based runner for external pipeline tools.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxStderrAttr caps how much captured stderr is attached to an error. The
// full output is always available in Result.Stderr.
const maxStderrAttr = 2048

// Runner implements ports.Runner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run starts the command, waits for it to finish, and captures stdout and
// stderr. The command is killed when ctx is cancelled or its deadline
// passes; a deadline expiry is reported as domain.ErrCommandTimeout.
func (r *Runner) Run(ctx context.Context, command ports.Command) (ports.Result, error) {
	if command.Name == "" {
		return ports.Result{}, zerr.New("empty command")
	}

	//nolint:gosec // commands are assembled by the pipeline stages, not end users
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir
	cmd.Env = append(os.Environ(), command.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.logger != nil {
		r.logger.Info("running " + command.Name + " " + strings.Join(command.Args, " "))
	}

	err := cmd.Run()
	res := ports.Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		timeoutErr := zerr.With(
			zerr.Wrap(ctxErr, domain.ErrCommandTimeout.Error()),
			"command", command.Name,
		)
		return res, timeoutErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		failErr := zerr.With(
			zerr.Wrap(err, domain.ErrCommandFailed.Error()),
			"command", command.Name,
		)
		failErr = zerr.With(failErr, "exit_code", res.ExitCode)
		failErr = zerr.With(failErr, "stderr", truncate(res.Stderr))
		return res, failErr
	}

	res.ExitCode = -1
	return res, zerr.With(zerr.Wrap(err, "failed to start command"), "command", command.Name)
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderrAttr {
		return s[:maxStderrAttr] + "... (truncated)"
	}
	return s
}
