package model

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// NotificationTTL is how long a notification stays on screen.
const NotificationTTL = 5 * time.Second

// Notification is a transient message shown to the user. It is never persisted.
type Notification struct {
	ID        string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

func NewNotification(sev Severity, msg string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Message:   msg,
		Severity:  sev,
		CreatedAt: time.Now(),
	}
}

func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= NotificationTTL
}
