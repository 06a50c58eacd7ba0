package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) RecordStart(ctx context.Context, attempt models.Attempt, profile *models.PlayerProfile) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("recording attempt start: player_id=%s, puzzle_id=%d, number=%d",
		attempt.PlayerID, attempt.PuzzleID, attempt.AttemptNumber)

	var id int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := saveProfile(ctx, tx, profile); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
INSERT INTO attempts (player_id, puzzle_id, attempt_number, start_time, hints_used, status, points_earned, elapsed_seconds)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, attempt.PlayerID, attempt.PuzzleID, attempt.AttemptNumber, attempt.StartTime, attempt.HintsUsed,
			string(attempt.Status), attempt.PointsEarned, attempt.ElapsedSeconds)
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		log.Error("failed to record attempt start: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *progressRepository) RecordCompletion(ctx context.Context, attempt models.Attempt, profile *models.PlayerProfile) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("recording attempt completion: id=%d, status=%s, points=%d", attempt.ID, attempt.Status, attempt.PointsEarned)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE attempts
SET end_time = ?, hints_used = ?, status = ?, points_earned = ?, elapsed_seconds = ?
WHERE id = ? AND status = ?
`, attempt.EndTime, attempt.HintsUsed, string(attempt.Status), attempt.PointsEarned, attempt.ElapsedSeconds,
			attempt.ID, string(models.AttemptActive))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrStaleAttempt
		}
		return saveProfile(ctx, tx, profile)
	})
	if err != nil {
		log.Error("failed to record attempt completion: %v", err)
	}
	return err
}
