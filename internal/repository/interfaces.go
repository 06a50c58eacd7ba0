package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/escaperoom/internal/models"
)

var (
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleAttempt is returned when an attempt is no longer active at write time.
	ErrStaleAttempt = errors.New("attempt is not active")
)

// AttemptRepository reads the attempt ledger. Get and Active return nil, nil
// when nothing matches.
type AttemptRepository interface {
	Get(ctx context.Context, id int64) (*models.Attempt, error)
	List(ctx context.Context, filter models.AttemptFilter) ([]models.Attempt, error)
	Count(ctx context.Context, playerID string, puzzleID int) (int, error)
	Active(ctx context.Context, playerID string, puzzleID int) (*models.Attempt, error)
	UpdateHints(ctx context.Context, id int64, hintsUsed int) error
}

// ProgressRepository writes an attempt together with the profile it changes,
// so either both are stored or neither is.
type ProgressRepository interface {
	RecordStart(ctx context.Context, attempt models.Attempt, profile *models.PlayerProfile) (int64, error)
	RecordCompletion(ctx context.Context, attempt models.Attempt, profile *models.PlayerProfile) error
}

// AccountRepository stores login credentials. GetByUsername returns nil, nil
// for an unknown username.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, playerID string, t time.Time) error
}
