package notify

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"calendar-service/internal/event"
)

// DefaultInterval is the poll cadence when the config does not override it.
const DefaultInterval = 30 * time.Second

// Snapshot is the poller's externally visible state for one user session.
type Snapshot struct {
	// Pending is the full backlog: every event currently awaiting this
	// user's attention, seen or not, oldest first.
	Pending []event.CalendarEvent `json:"pending"`
	// Current is the oldest not-yet-dismissed entry, or nil.
	Current *event.CalendarEvent `json:"current,omitempty"`
	// ShowBanner is true iff at least one entry is unseen.
	ShowBanner bool `json:"show_banner"`
}

// Poller periodically fetches the pending transfers and takeover offers for
// one user, filters out notifications the user has already dismissed, and
// keeps a local snapshot the session handlers read from.
//
// Local state is patched optimistically when this user resolves a transfer;
// if the remote write later turns out to have failed, the next successful
// poll is the sole correction mechanism. Poll errors are logged and
// swallowed, leaving the previous snapshot intact.
type Poller struct {
	userID   string
	events   event.Repository
	ledger   Ledger
	broker   *Broker
	interval time.Duration

	mu      sync.Mutex
	pending []event.CalendarEvent
	current *event.CalendarEvent
}

func NewPoller(userID string, events event.Repository, ledger Ledger, broker *Broker, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		userID:   userID,
		events:   events,
		ledger:   ledger,
		broker:   broker,
		interval: interval,
	}
}

// Run drives the recurring poll until ctx is cancelled. It also reacts to
// the broker's signals: a cleared event is dropped from local state without
// a round trip, and a login notice for this user forces an immediate poll.
func (p *Poller) Run(ctx context.Context) {
	cleared, cancelCleared := p.broker.SubscribeCleared()
	defer cancelCleared()
	login, cancelLogin := p.broker.SubscribeLogin()
	defer cancelLogin()

	// First poll happens right away; a session should not wait out the
	// first interval to learn about its pending transfers.
	p.Poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		case id := <-cleared:
			p.drop(ctx, id)
		case uid := <-login:
			if uid == p.userID {
				p.Poll(ctx)
			}
		}
	}
}

// Poll fetches the user's pending events and rebuilds the snapshot.
func (p *Poller) Poll(ctx context.Context) {
	evs, err := p.events.FindPendingForUser(ctx, p.userID)
	if err != nil {
		log.Printf("notification poll failed for user %s: %v", p.userID, err)
		return
	}
	// A poll completing after session teardown must not resurrect state.
	if ctx.Err() != nil {
		return
	}

	// Re-validate at poll time: an event accepted, rejected or reassigned
	// since the query ran (or returned by a stale read) no longer counts.
	pending := evs[:0]
	for _, ev := range evs {
		if ev.Status.Pending() {
			pending = append(pending, ev)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Date.Before(pending[j].Date) })

	seen, err := p.ledger.AllSeen(ctx, p.userID)
	if err != nil {
		log.Printf("seen-ledger read failed for user %s: %v", p.userID, err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = pending
	p.setCurrentLocked(seen)
}

// Snapshot returns the current notification state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := Snapshot{Pending: make([]event.CalendarEvent, len(p.pending))}
	copy(out.Pending, p.pending)
	if p.current != nil {
		cp := *p.current
		out.Current = &cp
		out.ShowBanner = true
	}
	return out
}

// Dismiss marks the notification seen at the moment the user closes it. The
// event stays in the backlog while it remains pending, but is never promoted
// to the current notification again.
func (p *Poller) Dismiss(ctx context.Context, notificationID string) error {
	if err := p.ledger.MarkSeen(ctx, p.userID, notificationID); err != nil {
		return err
	}
	p.refreshCurrent(ctx)
	return nil
}

// Resolve removes the event from local state immediately after this user
// accepted or rejected it, without waiting for the next poll, and marks it
// seen so it cannot flash again while the remote write is in flight.
func (p *Poller) Resolve(ctx context.Context, eventID string) error {
	if err := p.ledger.MarkSeen(ctx, p.userID, eventID); err != nil {
		return err
	}
	p.drop(ctx, eventID)
	return nil
}

// drop removes the event from the backlog (cleared signal or local resolve).
func (p *Poller) drop(ctx context.Context, eventID string) {
	p.mu.Lock()
	kept := p.pending[:0]
	for _, ev := range p.pending {
		if ev.ID != eventID {
			kept = append(kept, ev)
		}
	}
	p.pending = kept
	p.mu.Unlock()
	p.refreshCurrent(ctx)
}

func (p *Poller) refreshCurrent(ctx context.Context) {
	seen, err := p.ledger.AllSeen(ctx, p.userID)
	if err != nil {
		log.Printf("seen-ledger read failed for user %s: %v", p.userID, err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setCurrentLocked(seen)
}

func (p *Poller) setCurrentLocked(seen map[string]bool) {
	p.current = nil
	for i := range p.pending {
		if !seen[p.pending[i].ID] {
			p.current = &p.pending[i]
			return
		}
	}
}
