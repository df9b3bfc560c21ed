// Package envscope resolves the layered environment of a job instance.
// Three levels exist: pipeline, job, and step; a more specific level
// overrides an outer one for the same key. Every resolution returns an
// owned copy so concurrent instances can never share mutable state.
package envscope

import (
	"fmt"
	"sort"
)

// Scope is a resolved, flat environment. It is exclusively owned by the
// instance it was resolved for.
type Scope map[string]string

// Merge flattens the given layers into a fresh Scope. Later layers win.
// Nil layers are allowed and skipped.
func Merge(layers ...map[string]string) Scope {
	merged := make(Scope)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

// With returns a new Scope extended by one more layer, leaving the receiver
// untouched.
func (s Scope) With(layer map[string]string) Scope {
	return Merge(s, layer)
}

// Environ renders the scope as sorted KEY=value pairs, the form an
// executor's process environment expects. Sorting keeps invocations
// deterministic for logging and tests.
func (s Scope) Environ() []string {
	pairs := make([]string, 0, len(s))
	for k, v := range s {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(pairs)
	return pairs
}
