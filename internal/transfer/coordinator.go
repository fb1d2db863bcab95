// Package transfer orchestrates the ownership handshake between two users
// of a calendar slot, and the first-come-first-served takeover of released
// slots. Every mutation is a single conditional write; the repository's
// guard, not client-side locking, arbitrates between racing sessions.
package transfer

import (
	"context"
	"fmt"

	"calendar-service/internal/event"
	"calendar-service/internal/notify"
	"calendar-service/internal/user"
)

type Coordinator struct {
	events event.Repository
	users  user.Repository
	broker *notify.Broker
}

func NewCoordinator(events event.Repository, users user.Repository, broker *notify.Broker) *Coordinator {
	return &Coordinator{events: events, users: users, broker: broker}
}

// Initiate starts a transfer of the event to target. The requester must be
// the current owner; ownership does not move until the target accepts.
func (c *Coordinator) Initiate(ctx context.Context, eventID, requesterID, targetID string) (*event.CalendarEvent, error) {
	if targetID == "" {
		return nil, fmt.Errorf("%w: target user required", event.ErrValidation)
	}
	if targetID == requesterID {
		return nil, fmt.Errorf("%w: cannot transfer a slot to yourself", event.ErrValidation)
	}

	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.UserID == nil || *ev.UserID != requesterID {
		return nil, fmt.Errorf("%w: only the current owner may initiate a transfer", event.ErrValidation)
	}
	if !event.TransferIntentAllowed(ev.Status) {
		return nil, fmt.Errorf("%w: cannot transfer a slot in status %s", event.ErrInvalidTransition, ev.Status)
	}
	if _, err := c.users.GetByID(ctx, targetID); err != nil {
		return nil, fmt.Errorf("target user %s: %w", targetID, err)
	}

	return c.events.ConditionalUpdate(ctx, eventID,
		event.Expect{Status: ev.Status},
		event.Patch{
			Status:         event.StatusTransferring,
			UserID:         ev.UserID,
			PreviousUserID: ev.UserID,
			ToUserID:       &targetID,
		})
}

// Accept completes a transfer: the caller must be the pending target. The
// guard on (status, to_user_id) rejects late duplicates: a second accept,
// or an accept after the transfer was rescinded, observes a conflict.
func (c *Coordinator) Accept(ctx context.Context, eventID, callerID string) (*event.CalendarEvent, error) {
	ev, err := c.events.ConditionalUpdate(ctx, eventID,
		event.Expect{Status: event.StatusTransferring, ToUserID: &callerID},
		event.Patch{
			Status: event.StatusAssigned,
			UserID: &callerID,
		})
	if err != nil {
		return nil, err
	}
	c.broker.PublishCleared(eventID)
	return ev, nil
}

// Reject declines a transfer and hands the slot back to the previous owner
// in its settled state, so a rejection never strands anyone mid-transfer.
func (c *Coordinator) Reject(ctx context.Context, eventID, callerID string) (*event.CalendarEvent, error) {
	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status != event.StatusTransferring || ev.ToUserID == nil || *ev.ToUserID != callerID {
		return nil, fmt.Errorf("transfer of event %s: %w", eventID, event.ErrConflict)
	}

	updated, err := c.events.ConditionalUpdate(ctx, eventID,
		event.Expect{Status: event.StatusTransferring, ToUserID: &callerID},
		event.Patch{
			Status: event.StatusAssigned,
			UserID: ev.PreviousUserID,
		})
	if err != nil {
		return nil, err
	}
	c.broker.PublishCleared(eventID)
	return updated, nil
}

// Takeover claims a released slot for the caller. The status guard makes
// this first-come-first-served: whoever's write lands first wins, everyone
// else gets a conflict and should refresh before acting again.
func (c *Coordinator) Takeover(ctx context.Context, eventID, callerID string) (*event.CalendarEvent, error) {
	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status != event.StatusAvailableForTakeover {
		return nil, fmt.Errorf("takeover of event %s: %w", eventID, event.ErrConflict)
	}
	u, err := c.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("claiming user %s: %w", callerID, err)
	}
	if !u.EligibleFor(ev.City) {
		return nil, fmt.Errorf("%w: slot is restricted to another city", event.ErrValidation)
	}

	updated, err := c.events.ConditionalUpdate(ctx, eventID,
		event.Expect{Status: event.StatusAvailableForTakeover},
		event.Patch{
			Status: event.StatusAssigned,
			UserID: &callerID,
		})
	if err != nil {
		return nil, err
	}
	c.broker.PublishCleared(eventID)
	return updated, nil
}

// TransitionRequest is a direct role-checked status change outside the
// transfer handshake (start work, complete, release for takeover,
// administrative overrides).
type TransitionRequest struct {
	EventID string
	ActorID string
	Role    user.Role
	Target  event.Status
	// City is attached when work begins; required if the event has none.
	City *string
	// Assignee optionally re-points ownership when an administrator moves a
	// slot to Assigned.
	Assignee *string
}

// RequestTransition validates the change locally against the transition
// table before any write; rule violations never reach the repository.
func (c *Coordinator) RequestTransition(ctx context.Context, req TransitionRequest) (*event.CalendarEvent, error) {
	if !req.Target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", event.ErrValidation, req.Target)
	}
	if event.ProtocolOnly(req.Target) {
		return nil, fmt.Errorf("%w: status %s is only reached through the transfer protocol", event.ErrInvalidTransition, req.Target)
	}

	ev, err := c.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.CanTransition(ev.Status, req.Role, req.Target) {
		return nil, fmt.Errorf("%w: %s may not move %s to %s", event.ErrInvalidTransition, req.Role, ev.Status, req.Target)
	}
	// Non-administrators only operate on their own slots; the exception is
	// picking up an unowned Free/Unassigned slot, which assigns it to them.
	if req.Role != user.RoleAdministrator && ev.UserID != nil && *ev.UserID != req.ActorID {
		return nil, fmt.Errorf("%w: slot is owned by another user", event.ErrValidation)
	}

	patch := event.Patch{Status: req.Target}
	switch req.Target {
	case event.StatusAvailableForTakeover:
		// Releasing records who gave the slot up; an unowned slot has nothing
		// to release.
		if ev.UserID == nil {
			return nil, fmt.Errorf("%w: cannot release a slot that has no owner", event.ErrValidation)
		}
		patch.PreviousUserID = ev.UserID
	case event.StatusFree, event.StatusUnassigned:
		// Ownership and any in-flight transfer are wiped.
	case event.StatusAssigned:
		patch.UserID = ev.UserID
		if req.Assignee != nil {
			if req.Role != user.RoleAdministrator {
				return nil, fmt.Errorf("%w: only an administrator may reassign ownership", event.ErrValidation)
			}
			if _, err := c.users.GetByID(ctx, *req.Assignee); err != nil {
				return nil, fmt.Errorf("assignee %s: %w", *req.Assignee, err)
			}
			patch.UserID = req.Assignee
		}
		if patch.UserID == nil {
			// Picking up a Free/Unassigned slot assigns it to the actor.
			actor := req.ActorID
			patch.UserID = &actor
		}
	case event.StatusInProgress:
		if ev.UserID == nil {
			return nil, fmt.Errorf("%w: slot has no owner to start work", event.ErrValidation)
		}
		if (ev.City == nil || *ev.City == "") && (req.City == nil || *req.City == "") {
			return nil, fmt.Errorf("%w: a city is required when work begins", event.ErrValidation)
		}
		patch.UserID = ev.UserID
		patch.City = req.City
	case event.StatusCompleted:
		patch.UserID = ev.UserID
	}

	updated, err := c.events.ConditionalUpdate(ctx, req.EventID, event.Expect{Status: ev.Status}, patch)
	if err != nil {
		return nil, err
	}
	// Pulling an event out of a pending state (e.g. an admin reassigning a
	// mid-transfer slot to Free) invalidates outstanding notifications.
	if ev.Status.Pending() && !updated.Status.Pending() {
		c.broker.PublishCleared(req.EventID)
	}
	return updated, nil
}
