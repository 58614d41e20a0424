package jobs

import (
	"context"
	"time"

	"carrental/pkg/logger"
)

const jobTimeout = 2 * time.Minute

// StuckVerificationRetrier is the part of the verification service the
// retry job drives.
type StuckVerificationRetrier interface {
	RetryStuck(ctx context.Context) (int, error)
}

// JobRunner holds the work run on a schedule.
type JobRunner struct {
	verification StuckVerificationRetrier
	logger       *logger.Logger
}

func NewJobRunner(verification StuckVerificationRetrier, logger *logger.Logger) *JobRunner {
	return &JobRunner{
		verification: verification,
		logger:       logger,
	}
}

// RetryStuckVerifications requeues listings whose verification never
// finished.
func (r *JobRunner) RetryStuckVerifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	requeued, err := r.verification.RetryStuck(ctx)
	if err != nil {
		r.logger.WithError(err).Error("RetryStuckVerifications failed")
		return
	}

	r.logger.WithFields(map[string]interface{}{
		"requeued": requeued,
		"duration": time.Since(start).String(),
	}).Debug("RetryStuckVerifications finished")
}
