package scheduler

import (
	"context"
	"sync"

	"github.com/specialistvlad/pipewright/internal/ctxlog"
	"github.com/specialistvlad/pipewright/internal/logstore"
	"github.com/specialistvlad/pipewright/internal/matrix"
	"github.com/specialistvlad/pipewright/internal/registry"
	"github.com/specialistvlad/pipewright/internal/result"
	"github.com/specialistvlad/pipewright/internal/runner"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers bounds the number of concurrently running instances.
// Zero or negative means one worker per instance (unbounded).
func WithWorkers(n int) Option {
	return func(s *Scheduler) { s.workers = n }
}

// WithWorkDir sets the working directory handed to the executor.
func WithWorkDir(dir string) Option {
	return func(s *Scheduler) { s.workDir = dir }
}

// WithLogStore sets the store retaining captured step output.
func WithLogStore(logs *logstore.Store) Option {
	return func(s *Scheduler) { s.logs = logs }
}

// Scheduler runs job instances through the step executor.
type Scheduler struct {
	exec     runner.Executor
	registry *registry.Registry
	logs     *logstore.Store
	workers  int
	workDir  string
}

// New creates a Scheduler around the given executor and action registry.
func New(exec runner.Executor, reg *registry.Registry, opts ...Option) *Scheduler {
	s := &Scheduler{exec: exec, registry: reg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes all instances and returns one result per instance, indexed
// by expansion order regardless of completion order. It never returns an
// error: every failure mode is a recorded per-instance result.
func (s *Scheduler) Run(ctx context.Context, instances []*matrix.Instance) []*result.InstanceResult {
	logger := ctxlog.FromContext(ctx)

	results := make([]*result.InstanceResult, len(instances))
	if len(instances) == 0 {
		return results
	}

	readyChan := make(chan *matrix.Instance, len(instances))
	for _, inst := range instances {
		readyChan <- inst
	}
	close(readyChan)

	workers := s.workers
	if workers <= 0 || workers > len(instances) {
		workers = len(instances)
	}
	logger.Debug("Scheduler starting.", "instances", len(instances), "workers", workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, readyChan, results, workerID)
		}(i)
	}
	wg.Wait()

	logger.Debug("Scheduler finished.", "instances", len(instances))
	return results
}

// worker is the processing loop for a single concurrent worker. Results
// land in the slot reserved for each instance, so workers never contend.
func (s *Scheduler) worker(ctx context.Context, readyChan chan *matrix.Instance, results []*result.InstanceResult, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for inst := range readyChan {
		results[inst.Index] = s.runInstance(ctx, inst)
	}

	logger.Debug("Worker finished.", "workerID", workerID)
}
