package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/adminpanel/internal/domain/model"
	"github.com/ericfisherdev/adminpanel/internal/domain/port/driven"
)

// CredentialHolder owns the admin token. The in-memory copy is what goes out
// on every request; durable storage is written through so the token survives
// a restart.
type CredentialHolder struct {
	mu    sync.RWMutex
	token string
	store driven.CredentialStore
}

// LoadCredentialHolder reads the token from durable storage once. A missing
// key or a storage error both start the holder unauthenticated; the error is
// logged, never returned.
func LoadCredentialHolder(ctx context.Context, store driven.CredentialStore) *CredentialHolder {
	token, err := store.Get(ctx, model.CredentialKeyAdminToken)
	if err != nil {
		slog.Error("failed to load stored admin token", "error", err)
		token = ""
	}

	return &CredentialHolder{
		token: token,
		store: store,
	}
}

// Token returns the current token. The empty string means unauthenticated.
func (h *CredentialHolder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// HasToken reports whether a non-empty token is held.
func (h *CredentialHolder) HasToken() bool {
	return h.Token() != ""
}

// SetToken replaces the token wholesale and writes it through to durable
// storage. The in-memory value is replaced even when the write fails.
func (h *CredentialHolder) SetToken(ctx context.Context, token string) error {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	if err := h.store.Set(ctx, model.CredentialKeyAdminToken, token); err != nil {
		return fmt.Errorf("persisting admin token: %w", err)
	}
	return nil
}

// Clear drops the token from memory and durable storage.
func (h *CredentialHolder) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.token = ""
	h.mu.Unlock()

	if err := h.store.Delete(ctx, model.CredentialKeyAdminToken); err != nil {
		return fmt.Errorf("removing admin token: %w", err)
	}
	return nil
}
