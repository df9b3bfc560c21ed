package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/specialistvlad/pipewright/internal/ctxlog"
)

// Shell is the local, in-process executor. Each command runs as `sh -c`
// with the invocation environment appended to the process environment so
// PATH and friends keep working.
type Shell struct{}

// NewShell creates the local shell executor.
func NewShell() *Shell {
	return &Shell{}
}

// Run executes the invocation's commands in order, capturing combined
// output. It stops at the first non-zero exit and reports that code.
func (s *Shell) Run(ctx context.Context, inv Invocation) (Result, error) {
	logger := ctxlog.FromContext(ctx)

	var output bytes.Buffer
	for _, command := range inv.Commands {
		logger.Debug("Running shell command.", "command", command)

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Dir = inv.Dir
		cmd.Env = append(os.Environ(), inv.Env...)
		cmd.Stdout = &output
		cmd.Stderr = &output

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				// Cancellation (timeout) belongs to the caller, not the step.
				return Result{Output: output.Bytes()}, ctx.Err()
			}
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return Result{ExitCode: exitErr.ExitCode(), Output: output.Bytes()}, nil
			}
			// The shell never started: an executor fault, not a step result.
			return Result{Output: output.Bytes()}, err
		}
	}

	return Result{Output: output.Bytes()}, nil
}

var _ Executor = (*Shell)(nil)
