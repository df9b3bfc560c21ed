// Package runner defines the step-executor boundary. The engine invokes an
// Executor with an ordered command list, a resolved environment, and a
// working directory, and gets back an exit status; everything the commands
// actually do is opaque to the engine.
package runner

import "context"

// Invocation is one step handed to an executor.
type Invocation struct {
	// Commands run strictly in order; the first non-zero exit stops the
	// invocation.
	Commands []string
	// Env is the fully resolved KEY=value environment, forwarded verbatim.
	Env []string
	// Dir is the working directory for every command.
	Dir string
}

// Result is the executor's answer for one invocation.
type Result struct {
	// ExitCode is 0 on success, the failing command's exit code otherwise.
	ExitCode int
	// Output is the captured combined output, when the executor captures
	// any.
	Output []byte
}

// Executor runs one step invocation. A non-nil error means the executor
// itself misbehaved (unavailable, crashed, cancelled); a step exiting
// non-zero is a clean Result with a non-zero ExitCode, not an error.
type Executor interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}
