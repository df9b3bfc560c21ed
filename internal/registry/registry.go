// Package registry holds the named reusable actions a step can reference
// through `uses`. An action renders itself and its `with` inputs into the
// command list handed to the step executor; the engine never interprets
// what those commands do.
package registry

import (
	"fmt"

	"github.com/specialistvlad/pipewright/internal/config"
	"github.com/specialistvlad/pipewright/internal/result"
)

// Action is a named reusable step implementation.
type Action struct {
	Name        string
	Description string

	// Precondition marks actions that must succeed before any later step of
	// the instance may run; on failure the remaining steps are skipped, not
	// failed.
	Precondition bool

	// Render produces the ordered command list for one invocation.
	Render func(with map[string]string) []string
}

// Registry maps action names to their implementations for a single
// application instance.
type Registry struct {
	actions map[string]*Action
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{actions: make(map[string]*Action)}
}

// Register adds an action. A duplicate name is a programmer error.
func (r *Registry) Register(a *Action) {
	if _, exists := r.actions[a.Name]; exists {
		panic(fmt.Sprintf("registry: action %q registered twice", a.Name))
	}
	r.actions[a.Name] = a
}

// Lookup resolves an action by name.
func (r *Registry) Lookup(name string) (*Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// ValidateDocument checks that every `uses` step of the document resolves
// to a registered action. Run after document load, before scheduling.
func (r *Registry) ValidateDocument(doc *config.Document) error {
	for _, job := range doc.Jobs {
		for _, step := range job.Steps {
			if step.Uses == "" {
				continue
			}
			if _, ok := r.actions[step.Uses]; !ok {
				return fmt.Errorf("%w: job %q: step %q uses unknown action %q", result.ErrInvalidDocument, job.Name, step.Name, step.Uses)
			}
		}
	}
	return nil
}
