// Package testutil provides shared test doubles: a thread-safe log buffer
// and a scripted step executor for driving the scheduler without spawning
// processes.
package testutil

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/pipewright/internal/runner"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Response is the scripted outcome for one invocation.
type Response struct {
	ExitCode int
	Output   string
	Err      error
	// Delay makes the invocation hang before answering, so timeout
	// behavior can be exercised; cancellation wins over the delay.
	Delay time.Duration
}

// ScriptedExecutor answers invocations from a script keyed by the first
// command of the invocation. Unscripted invocations succeed.
type ScriptedExecutor struct {
	mu          sync.Mutex
	responses   map[string]Response
	invocations []runner.Invocation
}

// NewScriptedExecutor creates an executor with an empty script.
func NewScriptedExecutor() *ScriptedExecutor {
	return &ScriptedExecutor{responses: make(map[string]Response)}
}

// Script registers the response for invocations whose first command equals
// firstCommand.
func (e *ScriptedExecutor) Script(firstCommand string, resp Response) *ScriptedExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses[firstCommand] = resp
	return e
}

// Run implements runner.Executor.
func (e *ScriptedExecutor) Run(ctx context.Context, inv runner.Invocation) (runner.Result, error) {
	e.mu.Lock()
	e.invocations = append(e.invocations, inv)
	var resp Response
	if len(inv.Commands) > 0 {
		resp = e.responses[inv.Commands[0]]
	}
	e.mu.Unlock()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return runner.Result{}, ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return runner.Result{}, ctx.Err()
	}
	if resp.Err != nil {
		return runner.Result{}, resp.Err
	}
	return runner.Result{ExitCode: resp.ExitCode, Output: []byte(resp.Output)}, nil
}

// Invocations returns a copy of everything the executor was asked to run,
// in arrival order.
func (e *ScriptedExecutor) Invocations() []runner.Invocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]runner.Invocation, len(e.invocations))
	copy(out, e.invocations)
	return out
}

var _ runner.Executor = (*ScriptedExecutor)(nil)
