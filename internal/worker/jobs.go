package worker

import (
	"context"
	"fmt"

	"github.com/vytor/escaperoom/internal/errors"
	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
)

// AttemptExpirer ends timed-out attempts.
type AttemptExpirer interface {
	ExpireAttempt(ctx context.Context, attemptID int64) (*models.CompletionResult, error)
}

// ExpireAttemptJob closes one attempt that ran past its puzzle's time limit.
type ExpireAttemptJob struct {
	Expirer   AttemptExpirer
	AttemptID int64
}

func (j *ExpireAttemptJob) Name() string { return fmt.Sprintf("expire_attempt:%d", j.AttemptID) }

func (j *ExpireAttemptJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	res, err := j.Expirer.ExpireAttempt(ctx, j.AttemptID)
	if errors.Is(err, errors.ErrInvalidState) {
		// The player finished it first, or it was queued twice.
		log.Debug("attempt %d no longer expirable: %v", j.AttemptID, err)
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("attempt expired: id=%d, puzzle_id=%d, elapsed=%.0fs", res.AttemptID, res.PuzzleID, res.ElapsedSeconds)
	return nil
}
