// Package schema declares the gohcl-tagged structures a pipeline document
// decodes into. These are the HCL-facing shapes only; translation into the
// format-agnostic config model lives in the hcl package.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File is the top-level structure of a pipeline document file.
type File struct {
	Pipelines []*Pipeline `hcl:"pipeline,block"`
}

// Pipeline represents a `pipeline` block: trigger rules, a base environment
// map, and jobs in declaration order.
type Pipeline struct {
	Name string         `hcl:"name,label"`
	On   *OnBlock       `hcl:"on,block"`
	Env  hcl.Expression `hcl:"env,optional"`
	Jobs []*Job         `hcl:"job,block"`
}

// OnBlock represents the `on` block holding one rule per event kind.
type OnBlock struct {
	Push             *Trigger  `hcl:"push,block"`
	PullRequest      *Trigger  `hcl:"pull_request,block"`
	WorkflowDispatch *Dispatch `hcl:"workflow_dispatch,block"`
}

// Trigger represents a `push` or `pull_request` block.
type Trigger struct {
	Branches    []string `hcl:"branches,optional"`
	PathsIgnore []string `hcl:"paths_ignore,optional"`
}

// Dispatch represents an empty `workflow_dispatch` block. Its presence is
// the whole signal; it carries no attributes.
type Dispatch struct {
	Body hcl.Body `hcl:",remain"`
}

// Job represents a `job` block.
type Job struct {
	Name           string         `hcl:"name,label"`
	RunsOn         string         `hcl:"runs_on,optional"`
	TimeoutMinutes *int           `hcl:"timeout_minutes,optional"`
	Strategy       *Strategy      `hcl:"strategy,block"`
	Env            hcl.Expression `hcl:"env,optional"`
	Steps          []*Step        `hcl:"step,block"`
}

// Strategy represents a `strategy` block. The matrix attribute stays a raw
// expression so the translator can recover axis declaration order from the
// object constructor before evaluating values.
type Strategy struct {
	Matrix hcl.Expression `hcl:"matrix"`
}

// Step represents a `step` block. Exactly one of Uses/Run must be set;
// that rule belongs to the validation pass, not the decoder.
type Step struct {
	Name            string         `hcl:"name,label"`
	Uses            *string        `hcl:"uses,optional"`
	With            hcl.Expression `hcl:"with,optional"`
	Run             *string        `hcl:"run,optional"`
	Env             hcl.Expression `hcl:"env,optional"`
	ContinueOnError *bool          `hcl:"continue_on_error,optional"`
}
