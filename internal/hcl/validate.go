package hcl

import (
	"github.com/specialistvlad/pipewright/internal/config"
)

// validate is the explicit validation pass over a translated document. It
// runs after translation so every rule checks the agnostic model, not HCL
// syntax. All failures carry the invalid-document kind.
func validate(doc *config.Document) error {
	if doc.Triggers.Push == nil && doc.Triggers.PullRequest == nil && !doc.Triggers.WorkflowDispatch {
		return invalidf("pipeline %q declares no triggers and can never run", doc.Name)
	}

	jobNames := make(map[string]bool, len(doc.Jobs))
	for _, job := range doc.Jobs {
		if job.Name == "" {
			return invalidf("pipeline %q contains a job with an empty name", doc.Name)
		}
		if jobNames[job.Name] {
			return invalidf("duplicate job name %q", job.Name)
		}
		jobNames[job.Name] = true

		if err := validateJob(job); err != nil {
			return err
		}
	}
	return nil
}

func validateJob(job *config.Job) error {
	if len(job.Steps) == 0 {
		return invalidf("job %q declares no steps", job.Name)
	}

	stepNames := make(map[string]bool, len(job.Steps))
	for _, step := range job.Steps {
		if step.Name == "" {
			return invalidf("job %q contains a step with an empty name", job.Name)
		}
		if stepNames[step.Name] {
			return invalidf("job %q: duplicate step name %q", job.Name, step.Name)
		}
		stepNames[step.Name] = true

		hasUses := step.Uses != ""
		hasRun := step.Run != ""
		if hasUses == hasRun {
			return invalidf("job %q: step %q must set exactly one of uses or run", job.Name, step.Name)
		}
		if !hasUses && len(step.With) > 0 {
			return invalidf("job %q: step %q sets with but is not a uses step", job.Name, step.Name)
		}
	}

	if job.Strategy != nil {
		axisNames := make(map[string]bool, len(job.Strategy.Axes))
		for _, axis := range job.Strategy.Axes {
			if axis.Name == "" {
				return invalidf("job %q: matrix axis with an empty name", job.Name)
			}
			if axisNames[axis.Name] {
				return invalidf("job %q: duplicate matrix axis %q", job.Name, axis.Name)
			}
			axisNames[axis.Name] = true
		}
	}
	return nil
}
