// Package trigger decides which jobs of a document are eligible to run for
// a given event. An empty answer is a successful no-op, never an error.
package trigger

import (
	"context"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/specialistvlad/pipewright/internal/config"
	"github.com/specialistvlad/pipewright/internal/ctxlog"
	"github.com/specialistvlad/pipewright/internal/event"
)

// Eligible returns the jobs that should run for the event, in declaration
// order. Manual dispatch bypasses branch and path filtering entirely, but
// only when the document declares the workflow_dispatch trigger.
func Eligible(ctx context.Context, doc *config.Document, ev *event.Event) []*config.Job {
	logger := ctxlog.FromContext(ctx)

	if ev.Kind == event.WorkflowDispatch {
		if !doc.Triggers.WorkflowDispatch {
			logger.Debug("Manual dispatch received but the document declares no workflow_dispatch trigger.")
			return nil
		}
		return doc.Jobs
	}

	rule := doc.Triggers.Rule(string(ev.Kind))
	if rule == nil {
		logger.Debug("Document declares no trigger for this event kind.", "kind", ev.Kind)
		return nil
	}

	if !branchMatches(rule.Branches, ev.Branch) {
		logger.Debug("Event branch not in the allow-list.", "branch", ev.Branch)
		return nil
	}

	if suppressedByPaths(rule.PathsIgnore, ev.ChangedPaths) {
		logger.Debug("Every changed path is ignored; event suppressed.", "changed_paths", len(ev.ChangedPaths))
		return nil
	}

	return doc.Jobs
}

// branchMatches applies the exact-match branch allow-list. An empty list
// matches any branch; there are no glob semantics for branches.
func branchMatches(branches []string, branch string) bool {
	if len(branches) == 0 {
		return true
	}
	return slices.Contains(branches, branch)
}

// suppressedByPaths reports whether every changed path matches at least one
// ignore glob. A zero-length changed-path set (manual runs, newly created
// branches) never suppresses the event.
func suppressedByPaths(ignoreGlobs, changedPaths []string) bool {
	if len(changedPaths) == 0 || len(ignoreGlobs) == 0 {
		return false
	}

	for _, path := range changedPaths {
		if !ignoredPath(ignoreGlobs, path) {
			return false
		}
	}
	return true
}

func ignoredPath(globs []string, path string) bool {
	for _, glob := range globs {
		for _, pattern := range normalizeGlob(glob) {
			// Invalid patterns were not rejected at parse time because the
			// document treats them as opaque; a bad glob simply never matches.
			if ok, err := doublestar.Match(pattern, path); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// normalizeGlob adapts workflow-style patterns to doublestar semantics.
// In workflow files a leading "**" matches at any depth even when it is not
// a full path segment ("**.md" matches README.md and docs/a.md), while
// doublestar downgrades such a "**" to a plain "*". Expand the shorthand
// into the two equivalent doublestar patterns.
func normalizeGlob(glob string) []string {
	if strings.HasPrefix(glob, "**") && !strings.HasPrefix(glob, "**/") {
		rest := strings.TrimPrefix(glob, "**")
		return []string{"*" + rest, "**/*" + rest}
	}
	return []string{glob}
}
