package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotApplicable is returned by a Notifier that has nothing to deliver for a
// reminder (for example no phone number for SMS). It is not a delivery failure.
var ErrNotApplicable = errors.New("notifier not applicable")

// ErrSchedulerStopped is returned by Schedule once the scheduler has shut down.
var ErrSchedulerStopped = errors.New("Reminder scheduler is not running")

var (
	ErrSessionActive = errors.New("A treatment session is already running")
	ErrNoSession     = errors.New("No treatment session is running")
)

// ValidationError reports a missing or malformed scheduling field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PastTimeError reports a treatment or reminder time that is not in the future.
type PastTimeError struct {
	Message string
}

func (e *PastTimeError) Error() string {
	return e.Message
}

// NotFoundError reports an id with no active reminder behind it.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return "Reminder not found"
}

// DeliveryError wraps a transport failure at fire time. It never reaches a caller.
type DeliveryError struct {
	ReminderID uuid.UUID
	Channel    string
	Err        error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver reminder %s via %s: %v", e.ReminderID, e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsPastTime(err error) bool {
	var target *PastTimeError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
