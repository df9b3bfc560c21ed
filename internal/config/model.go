package config

import "time"

// DefaultJobTimeout applies when a job declares no timeout_minutes.
const DefaultJobTimeout = 60 * time.Minute

// Document is the unified, format-agnostic representation of one pipeline:
// its triggers, its base environment, and its jobs in declaration order.
type Document struct {
	Name     string
	Triggers Triggers
	Env      map[string]string
	Jobs     []*Job
}

// Triggers holds the per-event-kind trigger rules. A nil rule means the
// document does not react to that event kind at all.
type Triggers struct {
	Push             *TriggerRule
	PullRequest      *TriggerRule
	WorkflowDispatch bool
}

// TriggerRule filters push/pull_request events.
type TriggerRule struct {
	// Branches is an exact-match allow-list. Empty matches any branch.
	Branches []string
	// PathsIgnore holds **-capable globs. An event whose changed paths all
	// match is suppressed, unless the changed-path set is empty.
	PathsIgnore []string
}

// Job is a named unit of work. With a Strategy it is a template owning no
// concrete instances until expansion.
type Job struct {
	Name     string
	RunsOn   string
	Timeout  time.Duration
	Strategy *Strategy
	Env      map[string]string
	Steps    []*Step
}

// Step is one ordered unit of work within a job: either a named reusable
// action (Uses, with inputs in With) or an inline command block (Run).
// Exactly one of Uses/Run is set; validation enforces this.
type Step struct {
	Name            string
	Uses            string
	With            map[string]string
	Run             string
	Env             map[string]string
	ContinueOnError bool
}

// Strategy is an ordered set of matrix axes. The Cartesian product of all
// axis values is the set of combinations a templated job expands into.
type Strategy struct {
	Axes []Axis
}

// Axis is one matrix dimension with its ordered values.
type Axis struct {
	Name   string
	Values []string
}

// Rule returns the trigger rule for the given event kind name, or nil when
// the document does not declare that trigger.
func (t Triggers) Rule(kind string) *TriggerRule {
	switch kind {
	case "push":
		return t.Push
	case "pull_request":
		return t.PullRequest
	}
	return nil
}
