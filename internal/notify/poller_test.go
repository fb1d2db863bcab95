package notify

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"calendar-service/internal/event"
	"calendar-service/internal/memory"
)

func strptr(s string) *string { return &s }

func pendingEvent(id string, day int, status event.Status, toUser string) event.CalendarEvent {
	ev := event.CalendarEvent{
		ID:             id,
		CalendarID:     "cal",
		Date:           time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC),
		Status:         status,
		PreviousUserID: strptr("owner"),
	}
	if toUser != "" {
		ev.ToUserID = strptr(toUser)
		ev.UserID = strptr("owner")
	}
	return ev
}

func ids(evs []event.CalendarEvent) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.ID
	}
	return out
}

func TestPollPartitionsSeenAndUnseen(t *testing.T) {
	store := memory.NewEventStore()
	store.Put(pendingEvent("n1", 10, event.StatusTransferring, "u2"))
	store.Put(pendingEvent("n2", 11, event.StatusTransferring, "u2"))
	ledger := NewMemoryLedger()
	ctx := context.Background()
	if err := ledger.MarkSeen(ctx, "u2", "n1"); err != nil {
		t.Fatal(err)
	}

	p := NewPoller("u2", store, ledger, NewBroker(), time.Minute)
	p.Poll(ctx)

	snap := p.Snapshot()
	if got := ids(snap.Pending); !reflect.DeepEqual(got, []string{"n1", "n2"}) {
		t.Fatalf("backlog = %v, want [n1 n2]", got)
	}
	if snap.Current == nil || snap.Current.ID != "n2" {
		t.Fatalf("current = %+v, want n2 (oldest unseen)", snap.Current)
	}
	if !snap.ShowBanner {
		t.Fatal("banner should show while an unseen entry exists")
	}
}

func TestPollIsIdempotent(t *testing.T) {
	store := memory.NewEventStore()
	store.Put(pendingEvent("n1", 10, event.StatusTransferring, "u2"))
	store.Put(pendingEvent("n2", 11, event.StatusAvailableForTakeover, ""))
	p := NewPoller("u2", store, NewMemoryLedger(), NewBroker(), time.Minute)
	ctx := context.Background()

	p.Poll(ctx)
	first := p.Snapshot()
	p.Poll(ctx)
	second := p.Snapshot()

	if !reflect.DeepEqual(ids(first.Pending), ids(second.Pending)) {
		t.Fatalf("pending changed across polls: %v then %v", ids(first.Pending), ids(second.Pending))
	}
	if first.Current.ID != second.Current.ID {
		t.Fatalf("current changed across polls: %s then %s", first.Current.ID, second.Current.ID)
	}
}

// staleRepo returns rows whose status no longer qualifies, standing in for a
// read that raced a concurrent resolution.
type staleRepo struct {
	event.Repository
	rows []event.CalendarEvent
}

func (r *staleRepo) FindPendingForUser(ctx context.Context, userID string) ([]event.CalendarEvent, error) {
	out := make([]event.CalendarEvent, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func TestPollDropsStaleStatuses(t *testing.T) {
	freed := pendingEvent("n1", 10, event.StatusTransferring, "u2")
	freed.Status = event.StatusFree
	freed.ToUserID = nil
	freed.PreviousUserID = nil
	repo := &staleRepo{rows: []event.CalendarEvent{
		freed,
		pendingEvent("n2", 11, event.StatusTransferring, "u2"),
	}}

	p := NewPoller("u2", repo, NewMemoryLedger(), NewBroker(), time.Minute)
	p.Poll(context.Background())

	snap := p.Snapshot()
	if got := ids(snap.Pending); !reflect.DeepEqual(got, []string{"n2"}) {
		t.Fatalf("stale row not dropped: %v", got)
	}
}

func TestDismissNeverResurfaces(t *testing.T) {
	store := memory.NewEventStore()
	store.Put(pendingEvent("n1", 10, event.StatusTransferring, "u2"))
	ledger := NewMemoryLedger()
	p := NewPoller("u2", store, ledger, NewBroker(), time.Minute)
	ctx := context.Background()

	p.Poll(ctx)
	if snap := p.Snapshot(); snap.Current == nil || snap.Current.ID != "n1" {
		t.Fatalf("current = %+v, want n1", snap.Current)
	}

	if err := p.Dismiss(ctx, "n1"); err != nil {
		t.Fatal(err)
	}

	// The event is still pending remotely; repeated polls keep it in the
	// backlog but never promote it again.
	for i := 0; i < 3; i++ {
		p.Poll(ctx)
		snap := p.Snapshot()
		if snap.Current != nil {
			t.Fatalf("poll %d: dismissed notification resurfaced: %+v", i, snap.Current)
		}
		if snap.ShowBanner {
			t.Fatalf("poll %d: banner without unseen entries", i)
		}
		if got := ids(snap.Pending); !reflect.DeepEqual(got, []string{"n1"}) {
			t.Fatalf("poll %d: backlog = %v, want [n1]", i, got)
		}
	}
}

func TestResolveRemovesOptimistically(t *testing.T) {
	store := memory.NewEventStore()
	store.Put(pendingEvent("n1", 10, event.StatusTransferring, "u2"))
	store.Put(pendingEvent("n2", 11, event.StatusTransferring, "u2"))
	ledger := NewMemoryLedger()
	p := NewPoller("u2", store, ledger, NewBroker(), time.Minute)
	ctx := context.Background()

	p.Poll(ctx)
	if err := p.Resolve(ctx, "n1"); err != nil {
		t.Fatal(err)
	}

	// Removed immediately, before any further poll.
	snap := p.Snapshot()
	if got := ids(snap.Pending); !reflect.DeepEqual(got, []string{"n2"}) {
		t.Fatalf("backlog after resolve = %v, want [n2]", got)
	}
	if snap.Current == nil || snap.Current.ID != "n2" {
		t.Fatalf("current after resolve = %+v, want n2", snap.Current)
	}

	// Even if the remote write had failed and the event comes back in the
	// next poll, it stays seen and never flashes as current again.
	p.Poll(ctx)
	if snap := p.Snapshot(); snap.Current == nil || snap.Current.ID != "n2" {
		t.Fatalf("current after re-poll = %+v, want n2", snap.Current)
	}
}

func TestRunReactsToSignalsAndStops(t *testing.T) {
	store := memory.NewEventStore()
	store.Put(pendingEvent("n1", 10, event.StatusTransferring, "u2"))
	broker := NewBroker()
	p := NewPoller("u2", store, NewMemoryLedger(), broker, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()

	// The startup poll runs well before the hour-long tick.
	waitFor(t, func() bool { return len(p.Snapshot().Pending) == 1 })

	// A cleared signal drops the entry without waiting for a poll.
	broker.PublishCleared("n1")
	waitFor(t, func() bool { return len(p.Snapshot().Pending) == 0 })

	// A login signal for this user forces a fresh poll, which finds the
	// still-pending event again.
	broker.PublishLogin("u2")
	waitFor(t, func() bool { return len(p.Snapshot().Pending) == 1 })

	cancel()
	wg.Wait()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
