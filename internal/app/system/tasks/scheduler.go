// Package tasks runs the periodic background jobs: session reminders and
// activity digests.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/system/metrics"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Job is one periodic unit of work.
type Job struct {
	Name     string
	Interval time.Duration
	// RunAtStart runs the job once immediately instead of waiting a full
	// interval for the first run.
	RunAtStart bool
	Run        func(ctx context.Context) error
}

// Scheduler runs each added job on its own ticker until Stop.
type Scheduler struct {
	log    *zap.Logger
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewScheduler creates an idle scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{log: logger, ctx: ctx, cancel: cancel}
}

// Add registers a job. Jobs must be added before Start; jobs with a
// non-positive interval are ignored.
func (s *Scheduler) Add(j Job) {
	if j.Interval <= 0 || j.Run == nil {
		s.log.Warn("job disabled", zap.String("job", j.Name))
		return
	}
	s.jobs = append(s.jobs, j)
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.Name
	}
	return names
}

// Start launches one goroutine per job.
func (s *Scheduler) Start() {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
		s.log.Info("job scheduled",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop cancels running jobs and waits for their goroutines. It is safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.log.Info("scheduler stopped")
	})
}

func (s *Scheduler) loop(j Job) {
	defer s.wg.Done()

	if j.RunAtStart {
		s.runOnce(j)
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(j)
		}
	}
}

func (s *Scheduler) runOnce(j Job) {
	if s.ctx.Err() != nil {
		return
	}
	ctx, cancel := timeouts.WithTimeout(s.ctx, timeouts.Job(), s.log, j.Name)
	defer cancel()

	start := time.Now()
	err := j.Run(ctx)
	metrics.RecordJobRun(j.Name, err == nil, time.Since(start))
	if err != nil {
		s.log.Error("job failed", zap.String("job", j.Name), zap.Error(err))
	}
}
