package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/repository"
)

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository implementation
func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account models.Account) error {
	log := logger.FromContext(ctx).WithPrefix("account_repo")
	log.Debug("creating account: username=%s", account.Username)

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO accounts (player_id, username, password_hash, created_at)
VALUES (?, ?, ?, ?)
`, account.PlayerID, account.Username, account.PasswordHash, account.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		log.Error("failed to create account: %v", err)
	}
	return err
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	log := logger.FromContext(ctx).WithPrefix("account_repo")
	log.Debug("getting account: username=%s", username)

	var a models.Account
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT player_id, username, password_hash, created_at, last_login_at
FROM accounts
WHERE username = ?
`, username).Scan(&a.PlayerID, &a.Username, &a.PasswordHash, &a.CreatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get account: %v", err)
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}
	return &a, nil
}

func (r *accountRepository) UpdateLastLogin(ctx context.Context, playerID string, t time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET last_login_at = ? WHERE player_id = ?`, t, playerID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("account_repo").Error("failed to update last login: %v", err)
	}
	return err
}
