package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/escaperoom/internal/db"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	for _, table := range []string{"players", "player_puzzles", "player_achievements", "attempts", "accounts"} {
		var name string
		err := database.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	assert.NoError(t, database.Healthy(ctx))
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escaperoom.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestActiveAttemptIndex(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	_, err = database.ExecContext(ctx, `INSERT INTO players (player_id) VALUES ('p1')`)
	require.NoError(t, err)

	insert := `INSERT INTO attempts (player_id, puzzle_id, attempt_number, start_time, status) VALUES ('p1', 1, ?, CURRENT_TIMESTAMP, ?)`
	_, err = database.ExecContext(ctx, insert, 1, "active")
	require.NoError(t, err)

	_, err = database.ExecContext(ctx, insert, 2, "active")
	assert.Error(t, err, "second active attempt for the same puzzle")

	_, err = database.ExecContext(ctx, insert, 2, "failed")
	assert.NoError(t, err)
}
