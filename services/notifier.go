package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TreatmentReminder is what a Notifier delivers when a reminder fires.
type TreatmentReminder struct {
	ReminderID    uuid.UUID
	UserEmail     string
	UserName      string
	UserPhone     string
	TreatmentTime time.Time
	Duration      int
}

// Notifier delivers a treatment reminder over one channel.
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, r TreatmentReminder) error
}

// ErrorReporter forwards internal failures that have no caller to return to.
type ErrorReporter interface {
	Report(err error, extras map[string]interface{})
}
