package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/adminpanel/internal/domain/model"
	"github.com/ericfisherdev/adminpanel/internal/domain/port/driven"
)

func TestCredentialRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	err := repo.Set(ctx, model.CredentialKeyAdminToken, "abc123")
	require.NoError(t, err)

	val, err := repo.Get(ctx, model.CredentialKeyAdminToken)
	require.NoError(t, err)
	assert.Equal(t, "abc123", val)
}

func TestCredentialRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)

	val, err := repo.Get(context.Background(), model.CredentialKeyAdminToken)
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_UpsertOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, model.CredentialKeyAdminToken, "old-value"))
	require.NoError(t, repo.Set(ctx, model.CredentialKeyAdminToken, "new-value"))

	val, err := repo.Get(ctx, model.CredentialKeyAdminToken)
	require.NoError(t, err)
	assert.Equal(t, "new-value", val)
}

func TestCredentialRepo_EncryptsAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, model.CredentialKeyAdminToken, "abc123"))

	var stored string
	var encrypted bool
	err := db.Reader.QueryRowContext(ctx, `SELECT value, encrypted FROM credentials WHERE key = ?`, model.CredentialKeyAdminToken).Scan(&stored, &encrypted)
	require.NoError(t, err)
	assert.True(t, encrypted)
	assert.NotContains(t, stored, "abc123")
}

func TestCredentialRepo_PlaintextWithoutKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, nil)
	ctx := context.Background()

	assert.False(t, repo.Encrypted())
	require.NoError(t, repo.Set(ctx, model.CredentialKeyAdminToken, "abc123"))

	val, err := repo.Get(ctx, model.CredentialKeyAdminToken)
	require.NoError(t, err)
	assert.Equal(t, "abc123", val)
}

func TestCredentialRepo_EncryptedValueNeedsKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewCredentialRepo(db, testKey).Set(ctx, model.CredentialKeyAdminToken, "abc123"))

	_, err := NewCredentialRepo(db, nil).Get(ctx, model.CredentialKeyAdminToken)
	require.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestCredentialRepo_Lookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, model.CredentialKeyAdminToken, "abc123"))

	cred, err := repo.Lookup(ctx, model.CredentialKeyAdminToken)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, model.CredentialKeyAdminToken, cred.Key)
	assert.Equal(t, "abc123", cred.Value)
	assert.False(t, cred.UpdatedAt.IsZero())
}

func TestCredentialRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, model.CredentialKeyAdminToken, "abc123"))
	require.NoError(t, repo.Delete(ctx, model.CredentialKeyAdminToken))

	val, err := repo.Get(ctx, model.CredentialKeyAdminToken)
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_DeleteNonexistent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)

	err := repo.Delete(context.Background(), "nonexistent")
	assert.NoError(t, err, "deleting nonexistent credential should not error")
}
