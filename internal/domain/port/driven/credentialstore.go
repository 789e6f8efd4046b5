package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore adapters that require
// encryption when ADMINPANEL_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set ADMINPANEL_SECRET_KEY")

// CredentialStore defines the driven port for durable credential persistence.
// It is a flat key-value slot store; the adapter layer owns encryption at rest.
type CredentialStore interface {
	// Get retrieves the plaintext value stored under key.
	// Returns ("", nil) if nothing is stored under key.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
