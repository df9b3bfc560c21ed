package app

import (
	"context"

	"github.com/specialistvlad/pipewright/internal/config"
	"github.com/specialistvlad/pipewright/internal/ctxlog"
	"github.com/specialistvlad/pipewright/internal/event"
	"github.com/specialistvlad/pipewright/internal/matrix"
	"github.com/specialistvlad/pipewright/internal/report"
	"github.com/specialistvlad/pipewright/internal/result"
	"github.com/specialistvlad/pipewright/internal/scheduler"
	"github.com/specialistvlad/pipewright/internal/trigger"
)

// Run executes one pipeline run end to end and returns the process exit
// code. A non-nil error is a fatal pre-scheduling failure (invalid
// document, invalid event); everything after scheduling starts is recorded
// in results, never surfaced as an error.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
	}

	doc, err := a.loader.Load(ctx, a.config.PipelinePath)
	if err != nil {
		return report.ExitInfrastructure, err
	}
	if err := a.registry.ValidateDocument(doc); err != nil {
		return report.ExitInfrastructure, err
	}

	ev, err := event.Load(a.config.EventPath)
	if err != nil {
		return report.ExitInfrastructure, err
	}
	a.logger.Info("🚦 Evaluating triggers", "event", ev.Kind, "branch", ev.Branch, "changed_paths", len(ev.ChangedPaths))

	jobs := trigger.Eligible(ctx, doc, ev)
	if len(jobs) == 0 {
		a.logger.Info("🏳️ No jobs eligible for this event; pipeline is a no-op.")
		report.New(a.outW, a.logs).Write(nil)
		return report.ExitSuccess, nil
	}

	results, instances, slots := a.expandJobs(ctx, doc, jobs)

	if len(instances) > 0 {
		a.logger.Info("🚀 Starting concurrent execution...", "instances", len(instances), "workers", a.config.Workers)
		sched := scheduler.New(a.executor, a.registry,
			scheduler.WithWorkers(a.config.Workers),
			scheduler.WithWorkDir(a.config.WorkDir),
			scheduler.WithLogStore(a.logs),
		)
		for i, res := range sched.Run(ctx, instances) {
			res.Index = slots[i]
			results[slots[i]] = res
		}
		a.logger.Info("🏁 Execution finished.")
	}

	report.New(a.outW, a.logs).Write(results)

	a.logger.Debug("App.Run method finished.")
	return report.ExitCode(results), nil
}

// expandJobs expands every eligible job, reserving one report slot per
// instance in declaration order. A job whose strategy fails to expand
// occupies a single pre-failed slot; its siblings are unaffected. The
// returned slots slice maps each scheduled instance back to its report
// slot.
func (a *App) expandJobs(ctx context.Context, doc *config.Document, jobs []*config.Job) ([]*result.InstanceResult, []*matrix.Instance, []int) {
	logger := ctxlog.FromContext(ctx)

	var results []*result.InstanceResult
	var scheduled []*matrix.Instance
	var slots []int

	for _, job := range jobs {
		expanded, err := matrix.Expand(job, doc.Env)
		if err != nil {
			logger.Error("Matrix expansion failed; job marked failed.", "job", job.Name, "error", err)
			results = append(results, &result.InstanceResult{
				Index:   len(results),
				JobName: job.Name,
				Label:   job.Name,
				Status:  result.InstanceFailed,
				Err:     err,
			})
			continue
		}

		for _, inst := range expanded {
			inst.Index = len(scheduled)
			slots = append(slots, len(results))
			results = append(results, nil)
			scheduled = append(scheduled, inst)
		}
	}

	logger.Debug("Jobs expanded.", "jobs", len(jobs), "instances", len(scheduled))
	return results, scheduled, slots
}
