package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/escaperoom/internal/achievement"
	"github.com/vytor/escaperoom/internal/errors"
	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/repository"
	"github.com/vytor/escaperoom/internal/scoring"
)

// PuzzleCatalog is the read-only puzzle source the tracker plays against.
type PuzzleCatalog interface {
	achievement.PuzzleSet
	Get(id int) (models.Puzzle, bool)
	All() []models.Puzzle
	Categories() []string
	Achievements() []models.Achievement
}

// ProgressService runs the attempt lifecycle and keeps player profiles up to date.
type ProgressService interface {
	StartAttempt(ctx context.Context, playerID string, puzzleID int) (*models.Attempt, error)
	UseHint(ctx context.Context, attemptID int64, hintIndex int) (*models.Hint, error)
	CompleteAttempt(ctx context.Context, attemptID int64, succeeded bool) (*models.CompletionResult, error)
	SubmitAnswer(ctx context.Context, attemptID int64, answer string) (*models.CompletionResult, error)
	ExpireAttempt(ctx context.Context, attemptID int64) (*models.CompletionResult, error)
	EvaluateAchievements(ctx context.Context, playerID string) ([]models.Achievement, error)
	GetAttempt(ctx context.Context, attemptID int64) (*models.Attempt, error)
	ListAttempts(ctx context.Context, playerID string) ([]models.Attempt, error)
	GetProfile(ctx context.Context, playerID string) (*models.PlayerProfile, error)
	EnsureProfile(ctx context.Context, playerID string) (*models.PlayerProfile, error)
	GetStatistics(ctx context.Context, playerID string) (*models.PlayerStats, error)
	RecommendPuzzles(ctx context.Context, playerID string, limit int) ([]models.Puzzle, error)
	RecordSessionTime(ctx context.Context, playerID string, seconds float64) (*models.PlayerProfile, error)
}

type progressService struct {
	catalog  PuzzleCatalog
	profiles repository.ProfileRepository
	attempts repository.AttemptRepository
	progress repository.ProgressRepository
	locks    *keyedMutex
	now      func() time.Time
}

// ProgressOption configures the progress service.
type ProgressOption func(*progressService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProgressOption {
	return func(s *progressService) {
		s.now = now
	}
}

// NewProgressService creates a new ProgressService
func NewProgressService(
	catalog PuzzleCatalog,
	profiles repository.ProfileRepository,
	attempts repository.AttemptRepository,
	progress repository.ProgressRepository,
	opts ...ProgressOption,
) ProgressService {
	s := &progressService{
		catalog:  catalog,
		profiles: profiles,
		attempts: attempts,
		progress: progress,
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *progressService) StartAttempt(ctx context.Context, playerID string, puzzleID int) (*models.Attempt, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting attempt: player_id=%s, puzzle_id=%d", playerID, puzzleID)

	puzzle, ok := s.catalog.Get(puzzleID)
	if !ok {
		return nil, errors.NewNotFoundError("puzzle", puzzleID)
	}

	unlock := s.locks.Lock(playerID)
	defer unlock()

	profile, err := s.loadProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}

	active, err := s.attempts.Active(ctx, playerID, puzzleID)
	if err != nil {
		log.Error("failed to check for active attempt: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	if active != nil {
		return nil, errors.NewInvalidStateError(fmt.Sprintf("attempt %d on puzzle %d is still active", active.ID, puzzleID))
	}

	count, err := s.attempts.Count(ctx, playerID, puzzleID)
	if err != nil {
		log.Error("failed to count attempts: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	if puzzle.MaxAttempts != nil && count >= *puzzle.MaxAttempts {
		return nil, errors.NewAttemptLimitReachedError(puzzleID, *puzzle.MaxAttempts)
	}

	now := s.now()
	updated := profile.Clone()
	updated.MarkViewed(puzzleID)
	updated.UpdatedAt = now

	attempt := models.Attempt{
		PuzzleID:      puzzleID,
		PlayerID:      playerID,
		AttemptNumber: count + 1,
		StartTime:     now,
		Status:        models.AttemptActive,
	}

	id, err := s.progress.RecordStart(ctx, attempt, updated)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, errors.NewInvalidStateError(fmt.Sprintf("puzzle %d already has an active attempt", puzzleID))
	}
	if err != nil {
		log.Error("failed to record attempt start: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	attempt.ID = id
	log.Info("attempt started: id=%d, player_id=%s, puzzle_id=%d, number=%d", id, playerID, puzzleID, attempt.AttemptNumber)
	return &attempt, nil
}

func (s *progressService) UseHint(ctx context.Context, attemptID int64, hintIndex int) (*models.Hint, error) {
	log := logger.FromContext(ctx)
	log.Debug("using hint: attempt_id=%d, hint_index=%d", attemptID, hintIndex)

	attempt, unlock, err := s.lockAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if attempt.Status != models.AttemptActive {
		return nil, errors.NewInvalidStateError(fmt.Sprintf("attempt %d is %s", attemptID, attempt.Status))
	}

	puzzle, ok := s.catalog.Get(attempt.PuzzleID)
	if !ok {
		return nil, errors.NewNotFoundError("puzzle", attempt.PuzzleID)
	}

	switch {
	case hintIndex < 0:
		return nil, errors.NewValidationError("hint_index", "must not be negative")
	case hintIndex >= len(puzzle.Hints):
		return nil, errors.NewNotFoundError("hint", hintIndex)
	case hintIndex < attempt.HintsUsed:
		return nil, errors.NewHintAlreadyUsedError(hintIndex)
	case hintIndex > attempt.HintsUsed:
		return nil, errors.NewValidationError("hint_index", fmt.Sprintf("hints are revealed in order, next is %d", attempt.HintsUsed))
	}

	err = s.attempts.UpdateHints(ctx, attemptID, attempt.HintsUsed+1)
	if errors.Is(err, repository.ErrStaleAttempt) {
		return nil, errors.NewInvalidStateError(fmt.Sprintf("attempt %d is no longer active", attemptID))
	}
	if err != nil {
		log.Error("failed to update hints: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	hint := puzzle.Hints[hintIndex]
	log.Info("hint used: attempt_id=%d, hint_index=%d, deduction=%d", attemptID, hintIndex, hint.PointDeduction)
	return &hint, nil
}

func (s *progressService) CompleteAttempt(ctx context.Context, attemptID int64, succeeded bool) (*models.CompletionResult, error) {
	logger.FromContext(ctx).Debug("completing attempt: attempt_id=%d, succeeded=%t", attemptID, succeeded)

	status := models.AttemptFailed
	if succeeded {
		status = models.AttemptSucceeded
	}
	return s.finish(ctx, attemptID, func(models.Attempt, models.Puzzle, float64) (models.AttemptStatus, error) {
		return status, nil
	})
}

func (s *progressService) SubmitAnswer(ctx context.Context, attemptID int64, answer string) (*models.CompletionResult, error) {
	logger.FromContext(ctx).Debug("submitting answer: attempt_id=%d", attemptID)

	if models.NormalizeAnswer(answer) == "" {
		return nil, errors.NewValidationError("answer", "cannot be empty")
	}
	return s.finish(ctx, attemptID, func(_ models.Attempt, p models.Puzzle, _ float64) (models.AttemptStatus, error) {
		if p.CheckAnswer(answer) {
			return models.AttemptSucceeded, nil
		}
		return models.AttemptFailed, nil
	})
}

func (s *progressService) ExpireAttempt(ctx context.Context, attemptID int64) (*models.CompletionResult, error) {
	logger.FromContext(ctx).Debug("expiring attempt: attempt_id=%d", attemptID)

	return s.finish(ctx, attemptID, func(a models.Attempt, p models.Puzzle, elapsed float64) (models.AttemptStatus, error) {
		if !p.HasTimeLimit() {
			return "", errors.NewInvalidStateError(fmt.Sprintf("puzzle %d has no time limit", p.ID))
		}
		if elapsed < float64(*p.TimeLimitSeconds) {
			return "", errors.NewInvalidStateError(fmt.Sprintf("attempt %d is still within its time limit", a.ID))
		}
		return models.AttemptExpired, nil
	})
}

// outcomeFunc decides how an active attempt ends, or refuses to end it.
type outcomeFunc func(attempt models.Attempt, puzzle models.Puzzle, elapsedSeconds float64) (models.AttemptStatus, error)

// finish ends an active attempt, scores it, updates the profile, evaluates
// achievements and stores all of it in one write. Nothing is kept if that
// write fails.
func (s *progressService) finish(ctx context.Context, attemptID int64, outcome outcomeFunc) (*models.CompletionResult, error) {
	log := logger.FromContext(ctx)

	attempt, unlock, err := s.lockAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if attempt.Status != models.AttemptActive {
		return nil, errors.NewInvalidStateError(fmt.Sprintf("attempt %d is already %s", attemptID, attempt.Status))
	}

	puzzle, ok := s.catalog.Get(attempt.PuzzleID)
	if !ok {
		return nil, errors.NewNotFoundError("puzzle", attempt.PuzzleID)
	}

	now := s.now()
	elapsed := attempt.Elapsed(now).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	status, err := outcome(*attempt, puzzle, elapsed)
	if err != nil {
		return nil, err
	}

	profile, err := s.loadProfile(ctx, attempt.PlayerID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.attempts.List(ctx, models.AttemptFilter{PlayerID: attempt.PlayerID})
	if err != nil {
		log.Error("failed to load attempt ledger: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	finished := *attempt
	finished.EndTime = &now
	finished.Status = status
	finished.ElapsedSeconds = elapsed

	updated := profile.Clone()
	updated.AttemptsByPuzzle[puzzle.ID]++
	if status == models.AttemptSucceeded {
		finished.PointsEarned = scoring.ComputePoints(puzzle, attempt.HintsUsed, elapsed)
		updated.MarkCompleted(puzzle.ID, elapsed)
		updated.RecordSuccess(finished.PointsEarned)
	} else {
		updated.RecordFailure()
	}

	for i := range ledger {
		if ledger[i].ID == finished.ID {
			ledger[i] = finished
		}
	}
	unlocked := achievement.Evaluate(updated, ledger, s.catalog, s.catalog.Achievements())
	updated.UpdatedAt = now

	err = s.progress.RecordCompletion(ctx, finished, updated)
	if errors.Is(err, repository.ErrStaleAttempt) {
		return nil, errors.NewInvalidStateError(fmt.Sprintf("attempt %d is no longer active", attemptID))
	}
	if err != nil {
		log.Error("failed to record completion: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	bonus := 0
	for _, a := range unlocked {
		bonus += a.PointsBonus
	}
	if unlocked == nil {
		unlocked = []models.Achievement{}
	}

	log.Info("attempt finished: id=%d, status=%s, points=%d, achievements=%d", attemptID, status, finished.PointsEarned, len(unlocked))
	return &models.CompletionResult{
		AttemptID:        finished.ID,
		PuzzleID:         finished.PuzzleID,
		Status:           finished.Status,
		PointsEarned:     finished.PointsEarned,
		ElapsedSeconds:   finished.ElapsedSeconds,
		HintsUsed:        finished.HintsUsed,
		TotalPoints:      updated.TotalPoints,
		CurrentStreak:    updated.CurrentStreak,
		NewAchievements:  unlocked,
		AchievementBonus: bonus,
	}, nil
}

func (s *progressService) EvaluateAchievements(ctx context.Context, playerID string) ([]models.Achievement, error) {
	log := logger.FromContext(ctx)
	log.Debug("evaluating achievements: player_id=%s", playerID)

	unlock := s.locks.Lock(playerID)
	defer unlock()

	profile, err := s.loadProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.attempts.List(ctx, models.AttemptFilter{PlayerID: playerID})
	if err != nil {
		log.Error("failed to load attempt ledger: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	updated := profile.Clone()
	unlocked := achievement.Evaluate(updated, ledger, s.catalog, s.catalog.Achievements())
	if len(unlocked) == 0 {
		return []models.Achievement{}, nil
	}

	updated.UpdatedAt = s.now()
	if err := s.profiles.Save(ctx, updated); err != nil {
		log.Error("failed to save unlocked achievements: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	log.Info("achievements unlocked: player_id=%s, count=%d", playerID, len(unlocked))
	return unlocked, nil
}

func (s *progressService) GetAttempt(ctx context.Context, attemptID int64) (*models.Attempt, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting attempt: id=%d", attemptID)

	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	if attempt == nil {
		return nil, errors.NewNotFoundError("attempt", attemptID)
	}
	return attempt, nil
}

func (s *progressService) ListAttempts(ctx context.Context, playerID string) ([]models.Attempt, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing attempts: player_id=%s", playerID)

	attempts, err := s.attempts.List(ctx, models.AttemptFilter{PlayerID: playerID})
	if err != nil {
		log.Error("failed to list attempts: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}
	return attempts, nil
}

func (s *progressService) GetProfile(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	logger.FromContext(ctx).Debug("getting profile: player_id=%s", playerID)
	return s.loadProfile(ctx, playerID)
}

// EnsureProfile returns the player's profile, creating an empty one on first use.
func (s *progressService) EnsureProfile(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	log := logger.FromContext(ctx)
	log.Debug("ensuring profile: player_id=%s", playerID)

	if playerID == "" {
		return nil, errors.NewValidationError("player_id", "cannot be empty")
	}

	unlock := s.locks.Lock(playerID)
	defer unlock()

	profile, err := s.profiles.Get(ctx, playerID)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	if profile != nil {
		return profile, nil
	}

	profile = models.NewPlayerProfile(playerID)
	profile.CreatedAt = s.now()
	profile.UpdatedAt = profile.CreatedAt
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.loadProfile(ctx, playerID)
		}
		log.Error("failed to create profile: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	log.Info("profile created: player_id=%s", playerID)
	return profile, nil
}

func (s *progressService) RecordSessionTime(ctx context.Context, playerID string, seconds float64) (*models.PlayerProfile, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording session time: player_id=%s, seconds=%.1f", playerID, seconds)

	if seconds <= 0 {
		return nil, errors.NewValidationError("seconds", "must be positive")
	}

	unlock := s.locks.Lock(playerID)
	defer unlock()

	profile, err := s.loadProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}

	updated := profile.Clone()
	updated.TimePlayedSeconds += seconds
	updated.UpdatedAt = s.now()
	if err := s.profiles.Save(ctx, updated); err != nil {
		log.Error("failed to save session time: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	return updated, nil
}

// lockAttempt resolves the attempt's owner, takes that player's lock and
// re-reads the attempt under it.
func (s *progressService) lockAttempt(ctx context.Context, attemptID int64) (*models.Attempt, func(), error) {
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock(attempt.PlayerID)
	attempt, err = s.GetAttempt(ctx, attemptID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return attempt, unlock, nil
}

func (s *progressService) loadProfile(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	profile, err := s.profiles.Get(ctx, playerID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get profile: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("player profile", playerID)
	}
	return profile, nil
}
