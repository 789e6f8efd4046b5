package driven

import "context"

// Notifier reports outcomes to the admin as transient messages.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}
