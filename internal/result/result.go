// Package result defines the terminal statuses and the error taxonomy shared
// by the scheduler and the reporter. A result is immutable once recorded.
package result

import (
	"errors"
	"time"
)

// Error kinds. Everything the engine can fail with wraps one of these
// sentinels, so callers classify with errors.Is instead of string matching.
var (
	// ErrInvalidDocument marks a parse or validation failure of the pipeline
	// document or event descriptor. Fatal: the pipeline never starts.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidStrategy marks a matrix axis with zero values. Fatal for the
	// affected job only.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrStepFailure marks a step that exited non-zero.
	ErrStepFailure = errors.New("step failure")

	// ErrTimeout marks a job instance that exceeded its wall-clock budget.
	ErrTimeout = errors.New("timeout")

	// ErrInfrastructure marks an executor that was unavailable or crashed,
	// as opposed to a step failing on its own terms. Not retried.
	ErrInfrastructure = errors.New("infrastructure error")
)

// StepStatus is the terminal status of a single step.
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
	StepTimedOut  StepStatus = "timed-out"
)

// InstanceStatus is the aggregate status of one job instance.
type InstanceStatus string

const (
	InstanceSucceeded InstanceStatus = "succeeded"
	InstanceFailed    InstanceStatus = "failed"
	InstanceTimedOut  InstanceStatus = "timed-out"
)

// PipelineStatus is the final verdict for the whole run.
type PipelineStatus string

const (
	PipelineSucceeded PipelineStatus = "succeeded"
	PipelineFailed    PipelineStatus = "failed"
)

// StepResult records the outcome of a single step within an instance.
type StepResult struct {
	Name     string
	Status   StepStatus
	ExitCode int
	Err      error
}

// InstanceResult records the outcome of one job instance. Index preserves
// the deterministic expansion order (job declaration order, then matrix
// combination order) so the reporter never depends on completion order.
type InstanceResult struct {
	Index    int
	JobName  string
	Label    string
	Status   InstanceStatus
	Steps    []StepResult
	Err      error
	Duration time.Duration
}

// FirstFailure returns the first step that failed or timed out, if any.
func (r *InstanceResult) FirstFailure() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Status == StepFailed || s.Status == StepTimedOut {
			return s, true
		}
	}
	return StepResult{}, false
}

// Infrastructure reports whether this instance failed for infrastructure
// reasons rather than a step's own exit status.
func (r *InstanceResult) Infrastructure() bool {
	return r.Err != nil && errors.Is(r.Err, ErrInfrastructure)
}
