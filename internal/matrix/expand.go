// Package matrix expands a templated job into concrete, schedulable
// instances. Expansion is an explicit Cartesian product: after it runs, no
// implicit iteration is left anywhere in the scheduler.
package matrix

import (
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/pipewright/internal/config"
	"github.com/specialistvlad/pipewright/internal/envscope"
	"github.com/specialistvlad/pipewright/internal/result"
)

// Pair binds one matrix axis to one of its values.
type Pair struct {
	Axis  string
	Value string
}

// Instance is one concrete, schedulable execution of a job for one matrix
// combination. Env is the resolved pipeline+job scope, exclusively owned by
// this instance; the step layer merges in at invocation time.
type Instance struct {
	Index       int
	Job         *config.Job
	Combination []Pair
	Label       string
	Env         envscope.Scope
}

// Expand produces the instances of one job in deterministic order: the
// first declared axis varies slowest, values in declared order. A job
// without a strategy expands to exactly one instance. An axis with zero
// values fails with the invalid-strategy kind; the caller scopes that
// failure to this job alone.
func Expand(job *config.Job, pipelineEnv map[string]string) ([]*Instance, error) {
	baseEnv := envscope.Merge(pipelineEnv, job.Env)

	if job.Strategy == nil || len(job.Strategy.Axes) == 0 {
		return []*Instance{{
			Job:   job,
			Label: job.Name,
			Env:   baseEnv,
		}}, nil
	}

	combos := [][]Pair{{}}
	for _, axis := range job.Strategy.Axes {
		if len(axis.Values) == 0 {
			return nil, fmt.Errorf("%w: job %q: matrix axis %q has no values", result.ErrInvalidStrategy, job.Name, axis.Name)
		}

		next := make([][]Pair, 0, len(combos)*len(axis.Values))
		for _, combo := range combos {
			for _, value := range axis.Values {
				next = append(next, append(slices.Clone(combo), Pair{Axis: axis.Name, Value: value}))
			}
		}
		combos = next
	}

	instances := make([]*Instance, 0, len(combos))
	for _, combo := range combos {
		instances = append(instances, &Instance{
			Job:         job,
			Combination: combo,
			Label:       label(job.Name, combo),
			Env:         baseEnv.With(comboEnv(combo)),
		})
	}
	return instances, nil
}

// label derives the unique combination label used for reporting and as the
// log-store key, e.g. `test (rust-version=stable)`.
func label(jobName string, combo []Pair) string {
	parts := make([]string, 0, len(combo))
	for _, p := range combo {
		parts = append(parts, p.Axis+"="+p.Value)
	}
	return fmt.Sprintf("%s (%s)", jobName, strings.Join(parts, ", "))
}

// comboEnv exposes the bound axis values to steps as MATRIX_* variables so
// inline commands can reference their combination.
func comboEnv(combo []Pair) map[string]string {
	env := make(map[string]string, len(combo))
	for _, p := range combo {
		key := "MATRIX_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(p.Axis))
		env[key] = p.Value
	}
	return env
}
