package event

import (
	"context"
	"time"
)

// Expect is the optimistic guard for a conditional update. The write only
// applies while the row still matches; ToUserID is checked only when non-nil.
type Expect struct {
	Status   Status
	ToUserID *string
}

// Patch is the full ownership tuple written by a transition. Status, UserID,
// PreviousUserID and ToUserID are always rewritten (nil means NULL) so an
// event can never be left straddling two states; City is only touched when
// non-nil since locations are attached, never cleared, by this subsystem.
type Patch struct {
	Status         Status
	UserID         *string
	PreviousUserID *string
	ToUserID       *string
	City           *string
}

// Repository is the storage contract for calendar events. Implementations
// must provide read-after-write consistency and honor the conditional-update
// guard atomically at the row level; that guard is the sole arbiter between
// racing clients.
type Repository interface {
	GetByID(ctx context.Context, id string) (*CalendarEvent, error)

	// FindPendingForUser returns events awaiting resolution that concern the
	// user: Transferring events targeted at them, and AvailableForTakeover
	// events the user is eligible to claim. Results are ordered oldest date
	// first.
	FindPendingForUser(ctx context.Context, userID string) ([]CalendarEvent, error)

	// ConditionalUpdate applies patch iff the row still matches expect.
	// Returns ErrConflict when the row exists but no longer matches, and
	// ErrNotFound when it does not exist.
	ConditionalUpdate(ctx context.Context, id string, expect Expect, patch Patch) (*CalendarEvent, error)

	// CreateCalendar inserts the calendar and one event per element of
	// events, which all belong to it.
	CreateCalendar(ctx context.Context, cal *Calendar, events []CalendarEvent) error

	ListByCalendar(ctx context.Context, calendarID string, from, to time.Time) ([]CalendarEvent, error)
}
