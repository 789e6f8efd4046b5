package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/adminpanel/internal/domain/model"
	"github.com/ericfisherdev/adminpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// With a key, values are sealed with AES-256-GCM before write. Without one
// they are stored as-is and flagged unencrypted.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores plaintext.
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes or nil.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

// Encrypted reports whether values written by this repo are encrypted.
func (r *CredentialRepo) Encrypted() bool {
	return r.key != nil
}

// Set stores or replaces the value under key.
func (r *CredentialRepo) Set(ctx context.Context, key, value string) error {
	stored, encrypted := value, false
	if r.key != nil {
		sealed, err := r.encrypt(value)
		if err != nil {
			return fmt.Errorf("encrypt credential %q: %w", key, err)
		}
		stored, encrypted = sealed, true
	}

	const query = `
		INSERT INTO credentials (key, value, encrypted, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.Writer.ExecContext(ctx, query, key, stored, encrypted); err != nil {
		return fmt.Errorf("set credential %q: %w", key, err)
	}
	return nil
}

// Get retrieves the plaintext value stored under key.
// Returns ("", nil) if nothing is stored. A value written encrypted cannot be
// read back without the key and yields driven.ErrEncryptionKeyNotSet.
func (r *CredentialRepo) Get(ctx context.Context, key string) (string, error) {
	cred, err := r.lookup(ctx, key)
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", nil
	}
	return cred.Value, nil
}

// Lookup returns the full credential row under key, or (nil, nil) if absent.
func (r *CredentialRepo) Lookup(ctx context.Context, key string) (*model.Credential, error) {
	return r.lookup(ctx, key)
}

func (r *CredentialRepo) lookup(ctx context.Context, key string) (*model.Credential, error) {
	const query = `SELECT key, value, encrypted, updated_at FROM credentials WHERE key = ?`

	var (
		cred      model.Credential
		stored    string
		encrypted bool
		updatedAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&cred.Key, &stored, &encrypted, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w", key, err)
	}

	cred.Value = stored
	if encrypted {
		if r.key == nil {
			return nil, fmt.Errorf("get credential %q: %w", key, driven.ErrEncryptionKeyNotSet)
		}
		plaintext, err := r.decrypt(stored)
		if err != nil {
			return nil, fmt.Errorf("decrypt credential %q: %w", key, err)
		}
		cred.Value = plaintext
	}

	cred.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for credential %q: %w", key, err)
	}

	return &cred, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *CredentialRepo) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM credentials WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete credential %q: %w", key, err)
	}
	return nil
}

// encrypt seals plaintext with AES-256-GCM and returns base64 of
// nonce || ciphertext || tag.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// decrypt opens a value produced by encrypt.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *CredentialRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
