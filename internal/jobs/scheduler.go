package jobs

import (
	"time"

	"carrental/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron   *cron.Cron
	jobs   *JobRunner
	logger *logger.Logger
}

// NewScheduler registers the jobs with a UTC, seconds-precision cron. An
// invalid schedule is returned as an error rather than silently skipped.
func NewScheduler(jobRunner *JobRunner, retrySchedule string, logger *logger.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron:   c,
		jobs:   jobRunner,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(retrySchedule, s.jobs.RetryStuckVerifications); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.WithField("jobs", len(s.cron.Entries())).Info("Cron scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler stopped")
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
