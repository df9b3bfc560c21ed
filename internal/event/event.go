// Package event models the normalized trigger that starts a pipeline run.
package event

import (
	"fmt"

	"github.com/specialistvlad/pipewright/internal/result"
)

// Kind identifies what produced the event.
type Kind string

const (
	Push             Kind = "push"
	PullRequest      Kind = "pull_request"
	WorkflowDispatch Kind = "workflow_dispatch"
)

// Event is the normalized description of an incoming trigger. It is
// immutable once loaded; the engine only ever reads it.
type Event struct {
	Kind         Kind
	Branch       string
	ChangedPaths []string
}

// Validate checks the event for structural problems. Errors are classified
// as invalid-document failures because a malformed event, like a malformed
// pipeline, means the run never starts.
func (e *Event) Validate() error {
	switch e.Kind {
	case Push, PullRequest, WorkflowDispatch:
	default:
		return fmt.Errorf("%w: unknown event kind %q", result.ErrInvalidDocument, e.Kind)
	}
	if e.Kind != WorkflowDispatch && e.Branch == "" {
		return fmt.Errorf("%w: %s event requires a branch", result.ErrInvalidDocument, e.Kind)
	}
	return nil
}
