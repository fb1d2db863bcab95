package app

import (
	"context"
	"sync"
	"time"

	"calendar-service/internal/event"
	"calendar-service/internal/notify"
)

// SessionManager owns one notification poller per active user session,
// together with its cancellation handle. Closing a session (or shutting the
// manager down) stops the poller; no timer survives its session.
type SessionManager struct {
	base     context.Context
	events   event.Repository
	ledger   notify.Ledger
	broker   *notify.Broker
	interval time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	poller *notify.Poller
	cancel context.CancelFunc
}

func NewSessionManager(base context.Context, events event.Repository, ledger notify.Ledger, broker *notify.Broker, interval time.Duration) *SessionManager {
	return &SessionManager{
		base:     base,
		events:   events,
		ledger:   ledger,
		broker:   broker,
		interval: interval,
		sessions: make(map[string]*session),
	}
}

// Open starts (or reuses) the user's session and requests an immediate
// first poll via the login signal, so the user does not wait out the first
// interval for their pending transfers.
func (m *SessionManager) Open(userID string) *notify.Poller {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if !ok {
		ctx, cancel := context.WithCancel(m.base)
		s = &session{
			poller: notify.NewPoller(userID, m.events, m.ledger, m.broker, m.interval),
			cancel: cancel,
		}
		m.sessions[userID] = s
		go s.poller.Run(ctx)
	}
	m.mu.Unlock()

	m.broker.PublishLogin(userID)
	return s.poller
}

// Close tears the user's session down and cancels its poller.
func (m *SessionManager) Close(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.cancel()
		delete(m.sessions, userID)
	}
}

// Poller returns the user's live poller, if a session is open.
func (m *SessionManager) Poller(userID string) (*notify.Poller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	return s.poller, true
}

// Resolve patches the user's local notification state after they accepted
// or rejected a transfer: the entry disappears immediately and is marked
// seen, whether or not a session poller is currently running.
func (m *SessionManager) Resolve(ctx context.Context, userID, eventID string) error {
	if p, ok := m.Poller(userID); ok {
		return p.Resolve(ctx, eventID)
	}
	return m.ledger.MarkSeen(ctx, userID, eventID)
}

// Shutdown cancels every open session.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.cancel()
		delete(m.sessions, id)
	}
}
