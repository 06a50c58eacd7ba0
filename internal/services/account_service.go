package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/escaperoom/internal/auth"
	"github.com/vytor/escaperoom/internal/errors"
	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
	minPasswordLength = 8
)

// AccountService registers players and checks their credentials. Only the
// player id it returns is passed on to the progress tracker.
type AccountService interface {
	Register(ctx context.Context, username, password string) (*models.Account, error)
	Login(ctx context.Context, username, password string) (*models.Account, error)
}

type accountService struct {
	accounts repository.AccountRepository
	hasher   auth.PasswordHasher
	progress ProgressService
	now      func() time.Time
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts repository.AccountRepository, hasher auth.PasswordHasher, progress ProgressService) AccountService {
	return &accountService{
		accounts: accounts,
		hasher:   hasher,
		progress: progress,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *accountService) Register(ctx context.Context, username, password string) (*models.Account, error) {
	log := logger.FromContext(ctx)
	username = strings.TrimSpace(username)
	log.Debug("registering account: username=%s", username)

	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	account := models.Account{
		PlayerID:     uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errors.NewConflictError("username is already taken")
		}
		log.Error("failed to create account: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	log.Info("account registered: username=%s, player_id=%s", username, account.PlayerID)
	return &account, nil
}

// Login verifies the credentials and makes sure the player has a profile.
func (s *accountService) Login(ctx context.Context, username, password string) (*models.Account, error) {
	log := logger.FromContext(ctx)
	username = strings.TrimSpace(username)
	log.Debug("logging in: username=%s", username)

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		log.Error("failed to get account: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	if account == nil || !s.hasher.Verify(password, account.PasswordHash) {
		log.Warn("failed login: username=%s", username)
		return nil, errors.NewUnauthorizedError("invalid username or password")
	}

	if _, err := s.progress.EnsureProfile(ctx, account.PlayerID); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.accounts.UpdateLastLogin(ctx, account.PlayerID, now); err != nil {
		log.Error("failed to update last login: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	account.LastLoginAt = &now

	log.Info("player logged in: player_id=%s", account.PlayerID)
	return account, nil
}

func validateCredentials(username, password string) error {
	switch {
	case len(username) < minUsernameLength:
		return errors.NewValidationError("username", "must be at least 3 characters")
	case len(username) > maxUsernameLength:
		return errors.NewValidationError("username", "must be at most 32 characters")
	case len(password) < minPasswordLength:
		return errors.NewValidationError("password", "must be at least 8 characters")
	}
	return nil
}
