package model

import "time"

// NotificationLevel classifies a transient user notification.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a transient message shown once to the admin.
type Notification struct {
	ID        string
	Level     NotificationLevel
	Message   string
	CreatedAt time.Time
}
