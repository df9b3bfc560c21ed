package hcl

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/specialistvlad/pipewright/internal/config"
	"github.com/specialistvlad/pipewright/internal/schema"
)

// translatePipeline converts the HCL-specific pipeline schema into the
// agnostic model.
func (l *Loader) translatePipeline(p *schema.Pipeline) (*config.Document, error) {
	env, err := stringMapFromExpr(p.Env, "pipeline env")
	if err != nil {
		return nil, err
	}

	doc := &config.Document{
		Name: p.Name,
		Env:  env,
	}

	if p.On != nil {
		doc.Triggers = config.Triggers{
			Push:             translateTrigger(p.On.Push),
			PullRequest:      translateTrigger(p.On.PullRequest),
			WorkflowDispatch: p.On.WorkflowDispatch != nil,
		}
	}

	for _, j := range p.Jobs {
		job, err := l.translateJob(j)
		if err != nil {
			return nil, err
		}
		doc.Jobs = append(doc.Jobs, job)
	}
	return doc, nil
}

// translateTrigger converts a push/pull_request block into the model rule.
func translateTrigger(t *schema.Trigger) *config.TriggerRule {
	if t == nil {
		return nil
	}
	return &config.TriggerRule{
		Branches:    t.Branches,
		PathsIgnore: t.PathsIgnore,
	}
}

// translateJob converts a job block, resolving its timeout and strategy.
func (l *Loader) translateJob(j *schema.Job) (*config.Job, error) {
	env, err := stringMapFromExpr(j.Env, "env of job "+j.Name)
	if err != nil {
		return nil, err
	}

	timeout := config.DefaultJobTimeout
	if j.TimeoutMinutes != nil {
		if *j.TimeoutMinutes < 0 {
			return nil, invalidf("job %q: timeout_minutes must not be negative", j.Name)
		}
		timeout = time.Duration(*j.TimeoutMinutes) * time.Minute
	}

	strategy, err := translateStrategy(j.Strategy, j.Name)
	if err != nil {
		return nil, err
	}

	job := &config.Job{
		Name:     j.Name,
		RunsOn:   j.RunsOn,
		Timeout:  timeout,
		Strategy: strategy,
		Env:      env,
	}

	for _, s := range j.Steps {
		step, err := translateStep(s, j.Name)
		if err != nil {
			return nil, err
		}
		job.Steps = append(job.Steps, step)
	}
	return job, nil
}

// translateStep converts a step block.
func translateStep(s *schema.Step, jobName string) (*config.Step, error) {
	with, err := stringMapFromExpr(s.With, "with of step "+s.Name)
	if err != nil {
		return nil, err
	}
	env, err := stringMapFromExpr(s.Env, "env of step "+s.Name)
	if err != nil {
		return nil, err
	}

	step := &config.Step{
		Name: s.Name,
		With: with,
		Env:  env,
	}
	if s.Uses != nil {
		step.Uses = *s.Uses
	}
	if s.Run != nil {
		step.Run = *s.Run
	}
	if s.ContinueOnError != nil {
		step.ContinueOnError = *s.ContinueOnError
	}
	return step, nil
}

// translateStrategy converts the matrix expression into ordered axes. The
// object constructor is walked via hcl.ExprMap so axis declaration order
// survives translation; a plain evaluated map would lose it.
func translateStrategy(s *schema.Strategy, jobName string) (*config.Strategy, error) {
	if s == nil {
		return nil, nil
	}

	pairs, diags := hcl.ExprMap(s.Matrix)
	if diags.HasErrors() {
		return nil, invalidf("job %q: matrix must be an object mapping axis names to value lists", jobName)
	}

	strategy := &config.Strategy{}
	for _, pair := range pairs {
		name, err := stringFromExpr(pair.Key, "matrix axis name of job "+jobName)
		if err != nil {
			return nil, err
		}

		values, err := stringListFromExpr(pair.Value, "matrix axis "+name+" of job "+jobName)
		if err != nil {
			return nil, err
		}
		strategy.Axes = append(strategy.Axes, config.Axis{Name: name, Values: values})
	}
	return strategy, nil
}

// stringFromExpr evaluates an expression to a single string.
func stringFromExpr(expr hcl.Expression, what string) (string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", invalidf("evaluating %s: %v", what, diags)
	}
	return ctyToString(val, what)
}

// stringListFromExpr evaluates an expression to an ordered string slice.
func stringListFromExpr(expr hcl.Expression, what string) ([]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, invalidf("evaluating %s: %v", what, diags)
	}
	if !val.CanIterateElements() {
		return nil, invalidf("%s must be a list", what)
	}

	values := []string{}
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		str, err := ctyToString(elem, what)
		if err != nil {
			return nil, err
		}
		values = append(values, str)
	}
	return values, nil
}

// stringMapFromExpr evaluates an optional map expression into Go strings.
// A nil expression (absent attribute) yields a nil map.
func stringMapFromExpr(expr hcl.Expression, what string) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, invalidf("evaluating %s: %v", what, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, invalidf("%s must be a map of strings", what)
	}

	out := make(map[string]string)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		str, err := ctyToString(v, what)
		if err != nil {
			return nil, err
		}
		out[k.AsString()] = str
	}
	return out, nil
}

// ctyToString converts a cty value to its string form, accepting anything
// string-convertible (numbers, bools) since document values are forwarded
// verbatim as opaque strings.
func ctyToString(val cty.Value, what string) (string, error) {
	if val.IsNull() {
		return "", invalidf("%s must not be null", what)
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", invalidf("%s: %v", what, err)
	}
	return converted.AsString(), nil
}
