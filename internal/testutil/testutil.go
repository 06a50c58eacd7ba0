package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/escaperoom/internal/db"
	"github.com/vytor/escaperoom/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// IntPtr is a convenience for optional puzzle fields.
func IntPtr(v int) *int { return &v }

// Puzzle returns a valid catalog puzzle with the given id and category.
func Puzzle(id int, category string) models.Puzzle {
	return models.Puzzle{
		ID:         id,
		Title:      "Puzzle",
		Category:   category,
		Difficulty: models.DifficultyEasy,
		BasePoints: 100,
		Answer:     "answer",
	}
}
