package event

import (
	"errors"
	"time"
)

// Status enumerates the lifecycle states of a calendar event.
type Status string

const (
	StatusUnassigned           Status = "unassigned"
	StatusFree                 Status = "free"
	StatusAssigned             Status = "assigned"
	StatusInProgress           Status = "in_progress"
	StatusCompleted            Status = "completed"
	StatusAvailableForTakeover Status = "available_for_takeover"
	StatusTransferring         Status = "transferring"
	StatusTransferred          Status = "transferred"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusUnassigned, StatusFree, StatusAssigned, StatusInProgress,
		StatusCompleted, StatusAvailableForTakeover, StatusTransferring,
		StatusTransferred:
		return true
	}
	return false
}

// Pending reports whether the event is awaiting a transfer or takeover
// resolution. Only pending events surface as notifications.
func (s Status) Pending() bool {
	return s == StatusTransferring || s == StatusAvailableForTakeover
}

// CalendarEvent is a single date slot within a calendar, owned by at most
// one user at a time.
//
// Field invariants, maintained by every coordinator mutation:
//   - ToUserID is non-nil iff Status == Transferring.
//   - PreviousUserID is non-nil iff Status is Transferring or
//     AvailableForTakeover.
//   - ToUserID never equals UserID.
type CalendarEvent struct {
	ID             string    `json:"id"`
	CalendarID     string    `json:"calendar_id"`
	Date           time.Time `json:"date"`
	Status         Status    `json:"status"`
	UserID         *string   `json:"user_id,omitempty"`
	PreviousUserID *string   `json:"previous_user_id,omitempty"`
	ToUserID       *string   `json:"to_user_id,omitempty"`
	City           *string   `json:"city,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Calendar groups one event per date.
type Calendar struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Error taxonomy. Validation and invalid-transition errors are decided
// locally and never reach the repository; conflict and not-found come back
// from conditional writes and lookups.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("transition not allowed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already resolved by another actor")
	ErrTransient         = errors.New("transient backing-store failure")
)
