package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/adminpanel/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestToaster_DrainReturnsInOrderAndEmpties(t *testing.T) {
	toaster := NewToaster(0, discardLogger())
	ctx := context.Background()

	toaster.Success(ctx, "Availability Changed")
	toaster.Error(ctx, "Already cancelled")

	got := toaster.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, model.NotificationSuccess, got[0].Level)
	assert.Equal(t, "Availability Changed", got[0].Message)
	assert.Equal(t, model.NotificationError, got[1].Level)
	assert.Equal(t, "Already cancelled", got[1].Message)

	assert.Empty(t, toaster.Drain())
}

func TestToaster_IDsAreUUIDs(t *testing.T) {
	toaster := NewToaster(0, discardLogger())
	toaster.Success(context.Background(), "ok")

	got := toaster.Pending()
	require.Len(t, got, 1)
	_, err := uuid.Parse(got[0].ID)
	assert.NoError(t, err)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestToaster_PendingDoesNotDrain(t *testing.T) {
	toaster := NewToaster(0, discardLogger())
	toaster.Error(context.Background(), "boom")

	assert.Len(t, toaster.Pending(), 1)
	assert.Len(t, toaster.Pending(), 1)
	assert.Len(t, toaster.Drain(), 1)
}

func TestToaster_DropsOldestWhenFull(t *testing.T) {
	toaster := NewToaster(2, discardLogger())
	ctx := context.Background()

	toaster.Error(ctx, "first")
	toaster.Error(ctx, "second")
	toaster.Error(ctx, "third")

	got := toaster.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Message)
	assert.Equal(t, "third", got[1].Message)
}

func TestToaster_ConcurrentPush(t *testing.T) {
	toaster := NewToaster(1000, discardLogger())
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			toaster.Success(ctx, "ok")
		}()
	}
	wg.Wait()

	assert.Len(t, toaster.Drain(), goroutines)
}
