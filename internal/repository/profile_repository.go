package repository

import (
	"context"

	"github.com/vytor/escaperoom/internal/models"
)

// ProfileRepository stores player profiles. Get returns nil, nil when the
// player has no profile yet.
type ProfileRepository interface {
	Get(ctx context.Context, playerID string) (*models.PlayerProfile, error)
	Create(ctx context.Context, profile *models.PlayerProfile) error
	// Save writes the whole profile, unlocked achievements included, in one transaction.
	Save(ctx context.Context, profile *models.PlayerProfile) error
	List(ctx context.Context) ([]*models.PlayerProfile, error)
}
