package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/pipewright/internal/config"
	"github.com/specialistvlad/pipewright/internal/ctxlog"
	"github.com/specialistvlad/pipewright/internal/matrix"
	"github.com/specialistvlad/pipewright/internal/result"
	"github.com/specialistvlad/pipewright/internal/runner"
)

// runInstance executes one instance's steps strictly in declared order
// under the instance timeout. Cancelling this instance never touches its
// siblings; each call owns its own derived context.
func (s *Scheduler) runInstance(ctx context.Context, inst *matrix.Instance) *result.InstanceResult {
	logger := ctxlog.FromContext(ctx).With("instance", inst.Label)

	res := &result.InstanceResult{
		Index:   inst.Index,
		JobName: inst.Job.Name,
		Label:   inst.Label,
		Status:  result.InstanceSucceeded,
	}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	timeout := inst.Job.Timeout
	if timeout <= 0 {
		timeout = config.DefaultJobTimeout
	}
	instCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("▶️ Starting job instance", "steps", len(inst.Job.Steps))

	skipRemaining := false
	for _, step := range inst.Job.Steps {
		if skipRemaining {
			res.Steps = append(res.Steps, result.StepResult{Name: step.Name, Status: result.StepSkipped})
			continue
		}

		stepRes := s.runStep(instCtx, inst, step)
		res.Steps = append(res.Steps, stepRes)

		switch stepRes.Status {
		case result.StepTimedOut:
			res.Status = result.InstanceTimedOut
			res.Err = stepRes.Err
			skipRemaining = true

		case result.StepFailed:
			if stepRes.Err != nil && errors.Is(stepRes.Err, result.ErrInfrastructure) {
				// Executor faults are never retried; surfaced immediately.
				res.Status = result.InstanceFailed
				res.Err = stepRes.Err
				skipRemaining = true
				break
			}
			if s.isPrecondition(step) {
				res.Status = result.InstanceFailed
				res.Err = stepRes.Err
				skipRemaining = true
				break
			}
			if !step.ContinueOnError {
				res.Status = result.InstanceFailed
				res.Err = stepRes.Err
				skipRemaining = true
				break
			}
			logger.Warn("Step failed but is marked continue_on_error.", "step", step.Name, "exit_code", stepRes.ExitCode)
		}
	}

	switch res.Status {
	case result.InstanceSucceeded:
		logger.Info("✅ Job instance succeeded", "duration", res.Duration.Round(time.Millisecond))
	case result.InstanceTimedOut:
		logger.Error("⏰ Job instance timed out", "timeout", timeout)
	default:
		logger.Error("❌ Job instance failed", "error", res.Err)
	}
	return res
}

// runStep resolves one step into an invocation and crosses the executor
// boundary. A non-zero exit is a step failure; an executor error is either
// the instance timeout firing or an infrastructure fault.
func (s *Scheduler) runStep(ctx context.Context, inst *matrix.Instance, step *config.Step) result.StepResult {
	logger := ctxlog.FromContext(ctx).With("instance", inst.Label, "step", step.Name)

	commands, err := s.resolveCommands(step)
	if err != nil {
		return result.StepResult{Name: step.Name, Status: result.StepFailed, Err: err}
	}

	logger.Debug("Dispatching step to executor.", "commands", len(commands))
	invRes, err := s.exec.Run(ctx, runner.Invocation{
		Commands: commands,
		Env:      inst.Env.With(step.Env).Environ(),
		Dir:      s.workDir,
	})

	if s.logs != nil {
		s.logs.Put(inst.Label, step.Name, invRes.Output)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result.StepResult{
				Name:   step.Name,
				Status: result.StepTimedOut,
				Err:    fmt.Errorf("%w: step %q exceeded the instance budget", result.ErrTimeout, step.Name),
			}
		}
		return result.StepResult{
			Name:   step.Name,
			Status: result.StepFailed,
			Err:    fmt.Errorf("%w: step %q: %v", result.ErrInfrastructure, step.Name, err),
		}
	}

	if invRes.ExitCode != 0 {
		logger.Debug("Step exited non-zero.", "exit_code", invRes.ExitCode)
		return result.StepResult{
			Name:     step.Name,
			Status:   result.StepFailed,
			ExitCode: invRes.ExitCode,
			Err:      fmt.Errorf("%w: step %q exited with code %d", result.ErrStepFailure, step.Name, invRes.ExitCode),
		}
	}

	logger.Debug("Step succeeded.")
	return result.StepResult{Name: step.Name, Status: result.StepSucceeded}
}

// resolveCommands renders a uses step through the action registry, or wraps
// an inline run block as a single command.
func (s *Scheduler) resolveCommands(step *config.Step) ([]string, error) {
	if step.Uses == "" {
		return []string{step.Run}, nil
	}

	action, ok := s.registry.Lookup(step.Uses)
	if !ok {
		// Unreachable after document validation; kept as a guard for
		// callers that skip it.
		return nil, fmt.Errorf("%w: unknown action %q", result.ErrInvalidDocument, step.Uses)
	}
	return action.Render(step.With), nil
}

// isPrecondition reports whether a failing step must skip, not merely
// abort, everything after it.
func (s *Scheduler) isPrecondition(step *config.Step) bool {
	if step.Uses == "" {
		return false
	}
	action, ok := s.registry.Lookup(step.Uses)
	return ok && action.Precondition
}
