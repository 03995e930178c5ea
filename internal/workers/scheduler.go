package workers

import (
	"context"
	"fmt"
	"time"

	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/metrics"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single run so that a stuck query cannot pile up runs.
const jobTimeout = 5 * time.Minute

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on cron specs. A job still running when its next tick
// fires is skipped for that tick.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under spec, e.g. "@every 15m" or "0 * * * *".
func (s *Scheduler) Add(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), spec, err)
	}
	logger.Info("Worker scheduled", "worker", job.Name(), "spec", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Scheduler stop timed out with jobs still running")
	}
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()
	RunJob(ctx, job)
}

// RunJob runs job once, recording the outcome in the logs and metrics.
func RunJob(ctx context.Context, job Job) error {
	err := job.Run(ctx)
	logger.WorkerLog(job.Name(), "run", err)
	metrics.RecordWorkerRun(job.Name(), err)
	return err
}
