// Package memory holds in-memory implementations of the storage contracts
// with the same conditional-update semantics as the Postgres versions. They
// back the unit tests and require no running services.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"calendar-service/internal/event"
	"calendar-service/internal/user"
)

type EventStore struct {
	mu     sync.Mutex
	events map[string]event.CalendarEvent
	cals   map[string]event.Calendar
}

func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[string]event.CalendarEvent),
		cals:   make(map[string]event.Calendar),
	}
}

// Put seeds or overwrites an event unconditionally. Test setup only.
func (s *EventStore) Put(ev event.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
}

func (s *EventStore) GetByID(ctx context.Context, id string) (*event.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, event.ErrNotFound
	}
	cp := ev
	return &cp, nil
}

func (s *EventStore) FindPendingForUser(ctx context.Context, userID string) ([]event.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.CalendarEvent
	for _, ev := range s.events {
		switch ev.Status {
		case event.StatusTransferring:
			if ev.ToUserID != nil && *ev.ToUserID == userID {
				out = append(out, ev)
			}
		case event.StatusAvailableForTakeover:
			// Eligibility filtering is the query's concern in Postgres; the
			// in-memory store keeps city-open and city-matched rows alike and
			// lets tests seed only what is relevant.
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *EventStore) ConditionalUpdate(ctx context.Context, id string, expect event.Expect, patch event.Patch) (*event.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, event.ErrNotFound
	}
	if ev.Status != expect.Status {
		return nil, event.ErrConflict
	}
	if expect.ToUserID != nil {
		if ev.ToUserID == nil || *ev.ToUserID != *expect.ToUserID {
			return nil, event.ErrConflict
		}
	}
	ev.Status = patch.Status
	ev.UserID = patch.UserID
	ev.PreviousUserID = patch.PreviousUserID
	ev.ToUserID = patch.ToUserID
	if patch.City != nil {
		ev.City = patch.City
	}
	ev.UpdatedAt = time.Now().UTC()
	s.events[id] = ev
	cp := ev
	return &cp, nil
}

func (s *EventStore) CreateCalendar(ctx context.Context, cal *event.Calendar, events []event.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cals[cal.ID] = *cal
	for _, ev := range events {
		s.events[ev.ID] = ev
	}
	return nil
}

func (s *EventStore) ListByCalendar(ctx context.Context, calendarID string, from, to time.Time) ([]event.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.CalendarEvent
	for _, ev := range s.events {
		if ev.CalendarID != calendarID {
			continue
		}
		if !from.IsZero() && ev.Date.Before(from) {
			continue
		}
		if !to.IsZero() && ev.Date.After(to) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type UserStore struct {
	mu    sync.Mutex
	users map[string]user.User
}

func NewUserStore(users ...user.User) *UserStore {
	s := &UserStore{users: make(map[string]user.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, event.ErrNotFound
	}
	cp := u
	return &cp, nil
}
