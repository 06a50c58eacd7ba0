package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: player_id=%s", playerID)

	p := models.NewPlayerProfile(playerID)
	err := r.db.QueryRowContext(ctx, `
SELECT total_points, current_streak, highest_streak, time_played_seconds, created_at, updated_at
FROM players
WHERE player_id = ?
`, playerID).Scan(&p.TotalPoints, &p.CurrentStreak, &p.HighestStreak, &p.TimePlayedSeconds, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: player_id=%s", playerID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}

	profiles := map[string]*models.PlayerProfile{playerID: p}
	if err := loadPuzzleProgress(ctx, r.db, playerID, profiles); err != nil {
		log.Error("failed to load puzzle progress: %v", err)
		return nil, err
	}
	if err := loadAchievements(ctx, r.db, playerID, profiles); err != nil {
		log.Error("failed to load achievements: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.PlayerProfile) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("creating profile: player_id=%s", profile.PlayerID)

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO players (player_id, total_points, current_streak, highest_streak, time_played_seconds, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, profile.PlayerID, profile.TotalPoints, profile.CurrentStreak, profile.HighestStreak, profile.TimePlayedSeconds, profile.CreatedAt, profile.UpdatedAt)
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if err != nil {
			log.Error("failed to insert profile: %v", err)
			return err
		}
		return saveProfileChildren(ctx, tx, profile)
	})
}

func (r *profileRepository) Save(ctx context.Context, profile *models.PlayerProfile) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("saving profile: player_id=%s, points=%d", profile.PlayerID, profile.TotalPoints)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		return saveProfile(ctx, tx, profile)
	})
}

func (r *profileRepository) List(ctx context.Context) ([]*models.PlayerProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles")

	rows, err := r.db.QueryContext(ctx, `
SELECT player_id, total_points, current_streak, highest_streak, time_played_seconds, created_at, updated_at
FROM players
ORDER BY player_id ASC
`)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []*models.PlayerProfile
	byID := make(map[string]*models.PlayerProfile)
	for rows.Next() {
		var id string
		var total, current, highest int
		var played float64
		var created, updated time.Time
		if err := rows.Scan(&id, &total, &current, &highest, &played, &created, &updated); err != nil {
			log.Error("failed to scan profile row: %v", err)
			return nil, err
		}
		p := models.NewPlayerProfile(id)
		p.TotalPoints, p.CurrentStreak, p.HighestStreak = total, current, highest
		p.TimePlayedSeconds, p.CreatedAt, p.UpdatedAt = played, created, updated
		out = append(out, p)
		byID[id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadPuzzleProgress(ctx, r.db, "", byID); err != nil {
		log.Error("failed to load puzzle progress: %v", err)
		return nil, err
	}
	if err := loadAchievements(ctx, r.db, "", byID); err != nil {
		log.Error("failed to load achievements: %v", err)
		return nil, err
	}

	log.Debug("found %d profiles", len(out))
	return out, nil
}

// saveProfile upserts the player row and everything hanging off it.
func saveProfile(ctx context.Context, q querier, p *models.PlayerProfile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	_, err := q.ExecContext(ctx, `
INSERT INTO players (player_id, total_points, current_streak, highest_streak, time_played_seconds, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(player_id) DO UPDATE SET
    total_points = excluded.total_points,
    current_streak = excluded.current_streak,
    highest_streak = excluded.highest_streak,
    time_played_seconds = excluded.time_played_seconds,
    updated_at = excluded.updated_at
`, p.PlayerID, p.TotalPoints, p.CurrentStreak, p.HighestStreak, p.TimePlayedSeconds, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	return saveProfileChildren(ctx, q, p)
}

func saveProfileChildren(ctx context.Context, q querier, p *models.PlayerProfile) error {
	puzzleIDs := make(map[int]struct{})
	for id := range p.ViewedPuzzleIDs {
		puzzleIDs[id] = struct{}{}
	}
	for id := range p.CompletedPuzzleIDs {
		puzzleIDs[id] = struct{}{}
	}
	for id := range p.AttemptsByPuzzle {
		puzzleIDs[id] = struct{}{}
	}
	for id := range p.BestCompletionTimeByPuzzle {
		puzzleIDs[id] = struct{}{}
	}

	for id := range puzzleIDs {
		var best sql.NullFloat64
		if t, ok := p.BestCompletionTimeByPuzzle[id]; ok {
			best = sql.NullFloat64{Float64: t, Valid: true}
		}
		_, err := q.ExecContext(ctx, `
INSERT INTO player_puzzles (player_id, puzzle_id, viewed, completed, best_time_seconds, attempts)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(player_id, puzzle_id) DO UPDATE SET
    viewed = excluded.viewed,
    completed = excluded.completed,
    best_time_seconds = excluded.best_time_seconds,
    attempts = excluded.attempts
`, p.PlayerID, id, boolToInt(p.HasViewed(id)), boolToInt(p.HasCompleted(id)), best, p.AttemptsByPuzzle[id])
		if err != nil {
			return err
		}
	}

	for _, id := range p.AchievementIDs() {
		_, err := q.ExecContext(ctx, `
INSERT INTO player_achievements (player_id, achievement_id, unlocked_at)
VALUES (?, ?, ?)
ON CONFLICT(player_id, achievement_id) DO NOTHING
`, p.PlayerID, id, p.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// loadPuzzleProgress fills per-puzzle state into profiles. An empty playerID
// loads every player's rows.
func loadPuzzleProgress(ctx context.Context, q querier, playerID string, profiles map[string]*models.PlayerProfile) error {
	query := sqlBuilder.Select("player_id", "puzzle_id", "viewed", "completed", "best_time_seconds", "attempts").
		From("player_puzzles")
	if playerID != "" {
		query = query.Where(squirrel.Eq{"player_id": playerID})
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return err
	}

	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pid string
		var puzzleID, attempts int
		var viewed, completed bool
		var best sql.NullFloat64
		if err := rows.Scan(&pid, &puzzleID, &viewed, &completed, &best, &attempts); err != nil {
			return err
		}
		p, ok := profiles[pid]
		if !ok {
			continue
		}
		if viewed {
			p.ViewedPuzzleIDs[puzzleID] = struct{}{}
		}
		if completed {
			p.CompletedPuzzleIDs[puzzleID] = struct{}{}
		}
		if best.Valid {
			p.BestCompletionTimeByPuzzle[puzzleID] = best.Float64
		}
		if attempts > 0 {
			p.AttemptsByPuzzle[puzzleID] = attempts
		}
	}
	return rows.Err()
}

func loadAchievements(ctx context.Context, q querier, playerID string, profiles map[string]*models.PlayerProfile) error {
	query := sqlBuilder.Select("player_id", "achievement_id").From("player_achievements")
	if playerID != "" {
		query = query.Where(squirrel.Eq{"player_id": playerID})
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return err
	}

	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pid, achievementID string
		if err := rows.Scan(&pid, &achievementID); err != nil {
			return err
		}
		if p, ok := profiles[pid]; ok {
			p.UnlockedAchievementIDs[achievementID] = struct{}{}
		}
	}
	return rows.Err()
}
