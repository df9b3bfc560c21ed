// Package report turns per-instance results into the final pipeline
// verdict, a deterministic human-readable summary, and the process exit
// code.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/specialistvlad/pipewright/internal/logstore"
	"github.com/specialistvlad/pipewright/internal/result"
)

// Process exit codes. Infrastructure faults are distinguished from honest
// test failures so callers can tell "the build is broken" from "the runner
// is broken".
const (
	ExitSuccess        = 0
	ExitFailure        = 1
	ExitInfrastructure = 2
)

// Verdict aggregates instance results: the pipeline succeeds iff every
// instance succeeded. An empty run (suppressed event) is a success.
func Verdict(results []*result.InstanceResult) result.PipelineStatus {
	for _, res := range results {
		if res.Status != result.InstanceSucceeded {
			return result.PipelineFailed
		}
	}
	return result.PipelineSucceeded
}

// ExitCode maps results to the process exit status. Any infrastructure
// failure wins over plain step failures.
func ExitCode(results []*result.InstanceResult) int {
	code := ExitSuccess
	for _, res := range results {
		if res.Status == result.InstanceSucceeded {
			continue
		}
		if res.Infrastructure() {
			return ExitInfrastructure
		}
		code = ExitFailure
	}
	return code
}

// Reporter renders the summary. Results arrive indexed by expansion order
// (job declaration order, then matrix combination order), so the summary is
// stable regardless of how concurrent instances actually finished.
type Reporter struct {
	out  io.Writer
	logs *logstore.Store
}

// New creates a Reporter writing to out. logs may be nil; retained step
// output is then omitted from failure details.
func New(out io.Writer, logs *logstore.Store) *Reporter {
	return &Reporter{out: out, logs: logs}
}

// Write renders one line per instance plus failure details, then the
// verdict.
func (r *Reporter) Write(results []*result.InstanceResult) {
	for _, res := range results {
		fmt.Fprintf(r.out, "%-10s %s (%s)\n", res.Status, res.Label, res.Duration.Round(time.Millisecond))

		if res.Status == result.InstanceSucceeded {
			// Steps continued over with continue_on_error may have failed;
			// a green instance still reports clean.
			continue
		}

		failing, ok := res.FirstFailure()
		if !ok {
			// No step ever ran; the instance failed before scheduling.
			if res.Err != nil {
				fmt.Fprintf(r.out, "           error: %v\n", res.Err)
			}
			continue
		}
		if failing.Status == result.StepTimedOut {
			fmt.Fprintf(r.out, "           first failing step: %s (timed out)\n", failing.Name)
		} else {
			fmt.Fprintf(r.out, "           first failing step: %s (exit code %d)\n", failing.Name, failing.ExitCode)
		}
		if res.Infrastructure() {
			fmt.Fprintf(r.out, "           infrastructure: %v\n", res.Err)
		}
		r.writeRetainedLog(res.Label, failing.Name)
	}

	fmt.Fprintf(r.out, "pipeline %s\n", Verdict(results))
}

// writeRetainedLog appends the retained output of the failing step, when
// the log store still holds it.
func (r *Reporter) writeRetainedLog(label, stepName string) {
	if r.logs == nil {
		return
	}
	out, ok := r.logs.Get(label, stepName)
	if !ok {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		fmt.Fprintf(r.out, "           | %s\n", line)
	}
}
