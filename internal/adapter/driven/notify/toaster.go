// Package notify implements the Notifier port as a queue of transient
// toast messages that the dashboard drains on each render.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/adminpanel/internal/domain/model"
	"github.com/ericfisherdev/adminpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Toaster)(nil)

// DefaultCapacity is the number of pending toasts kept before the oldest is
// dropped.
const DefaultCapacity = 20

// Toaster is a bounded FIFO of pending notifications. It is safe for
// concurrent use.
type Toaster struct {
	mu       sync.Mutex
	pending  []model.Notification
	capacity int
	logger   *slog.Logger
	now      func() time.Time
}

// NewToaster creates a Toaster holding at most capacity pending toasts.
// A non-positive capacity falls back to DefaultCapacity.
func NewToaster(capacity int, logger *slog.Logger) *Toaster {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Toaster{
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// Success queues a success toast.
func (t *Toaster) Success(ctx context.Context, message string) {
	t.push(ctx, model.NotificationSuccess, message)
}

// Error queues an error toast.
func (t *Toaster) Error(ctx context.Context, message string) {
	t.push(ctx, model.NotificationError, message)
}

func (t *Toaster) push(ctx context.Context, level model.NotificationLevel, message string) {
	n := model.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: t.now(),
	}

	t.mu.Lock()
	if len(t.pending) >= t.capacity {
		dropped := len(t.pending) - t.capacity + 1
		t.pending = append(t.pending[:0], t.pending[dropped:]...)
	}
	t.pending = append(t.pending, n)
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "notification",
		"id", n.ID,
		"level", string(level),
		"message", message,
	)
}

// Drain returns every pending toast, oldest first, and empties the queue.
func (t *Toaster) Drain() []model.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.pending
	t.pending = nil
	if out == nil {
		out = []model.Notification{}
	}
	return out
}

// Pending returns a copy of the pending toasts without removing them.
func (t *Toaster) Pending() []model.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.Notification, len(t.pending))
	copy(out, t.pending)
	return out
}
