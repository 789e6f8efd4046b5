package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, RunMigrations(db))

	var count int
	err := db.Reader.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'credentials'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewDB_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adminpanel.db")

	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, path, db.Path())
	require.NoError(t, RunMigrations(db))

	repo := NewCredentialRepo(db, testKey)
	require.NoError(t, repo.Set(context.Background(), "aToken", "abc123"))

	got, err := repo.Get(context.Background(), "aToken")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	var mode string
	require.NoError(t, db.Reader.QueryRowContext(context.Background(), `PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}
