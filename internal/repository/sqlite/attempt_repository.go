package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/repository"
)

var attemptColumns = []string{
	"id", "player_id", "puzzle_id", "attempt_number", "start_time", "end_time",
	"hints_used", "status", "points_earned", "elapsed_seconds",
}

type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new AttemptRepository implementation
func NewAttemptRepository(db *sql.DB) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*models.Attempt, error) {
	var a models.Attempt
	var end sql.NullTime
	var status string
	if err := row.Scan(&a.ID, &a.PlayerID, &a.PuzzleID, &a.AttemptNumber, &a.StartTime, &end,
		&a.HintsUsed, &status, &a.PointsEarned, &a.ElapsedSeconds); err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		a.EndTime = &t
	}
	a.Status = models.AttemptStatus(status)
	return &a, nil
}

func (r *attemptRepository) Get(ctx context.Context, id int64) (*models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("getting attempt: id=%d", id)

	stmt, args, err := sqlBuilder.Select(attemptColumns...).From("attempts").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	a, err := scanAttempt(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("attempt not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, err
	}
	return a, nil
}

func (r *attemptRepository) List(ctx context.Context, filter models.AttemptFilter) ([]models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("listing attempts with filter: player_id=%s, puzzle_id=%d, status=%s",
		filter.PlayerID, filter.PuzzleID, filter.Status)

	query := sqlBuilder.Select(attemptColumns...).From("attempts")
	if filter.PlayerID != "" {
		query = query.Where(squirrel.Eq{"player_id": filter.PlayerID})
	}
	if filter.PuzzleID != 0 {
		query = query.Where(squirrel.Eq{"puzzle_id": filter.PuzzleID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	query = query.OrderBy("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			log.Error("failed to scan attempt row: %v", err)
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	log.Debug("found %d attempts", len(attempts))
	return attempts, rows.Err()
}

func (r *attemptRepository) Count(ctx context.Context, playerID string, puzzleID int) (int, error) {
	stmt, args, err := sqlBuilder.Select("COUNT(*)").From("attempts").
		Where(squirrel.Eq{"player_id": playerID, "puzzle_id": puzzleID}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		logger.FromContext(ctx).WithPrefix("attempt_repo").Error("failed to count attempts: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *attemptRepository) Active(ctx context.Context, playerID string, puzzleID int) (*models.Attempt, error) {
	stmt, args, err := sqlBuilder.Select(attemptColumns...).From("attempts").
		Where(squirrel.Eq{"player_id": playerID, "puzzle_id": puzzleID, "status": string(models.AttemptActive)}).
		ToSql()
	if err != nil {
		return nil, err
	}

	a, err := scanAttempt(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("attempt_repo").Error("failed to get active attempt: %v", err)
		return nil, err
	}
	return a, nil
}

func (r *attemptRepository) UpdateHints(ctx context.Context, id int64, hintsUsed int) error {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("updating hints: attempt_id=%d, hints_used=%d", id, hintsUsed)

	res, err := r.db.ExecContext(ctx, `UPDATE attempts SET hints_used = ? WHERE id = ? AND status = ?`,
		hintsUsed, id, string(models.AttemptActive))
	if err != nil {
		log.Error("failed to update hints: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrStaleAttempt
	}
	return nil
}
