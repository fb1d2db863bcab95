package notify

import "sync"

// Broker carries the two in-process session signals: "notification cleared"
// (a transfer or takeover was resolved, pollers should drop the event from
// local state without waiting for the next cycle) and "login" (a session
// just opened, its poller should poll immediately instead of waiting out the
// first interval).
//
// Sends never block: a subscriber that has fallen behind misses the nudge
// and is corrected by its next poll, which is the authoritative path anyway.
type Broker struct {
	mu      sync.Mutex
	nextID  int
	cleared map[int]chan string
	login   map[int]chan string
}

func NewBroker() *Broker {
	return &Broker{
		cleared: make(map[int]chan string),
		login:   make(map[int]chan string),
	}
}

// SubscribeCleared returns a channel of resolved event ids and a cancel
// function that must be called on teardown.
func (b *Broker) SubscribeCleared() (<-chan string, func()) {
	return b.subscribe(b.cleared)
}

// SubscribeLogin returns a channel of user ids whose session just opened.
func (b *Broker) SubscribeLogin() (<-chan string, func()) {
	return b.subscribe(b.login)
}

func (b *Broker) subscribe(m map[int]chan string) (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan string, 16)
	m[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(m, id)
	}
}

// PublishCleared announces that the event no longer needs attention.
func (b *Broker) PublishCleared(eventID string) {
	b.publish(b.cleared, eventID)
}

// PublishLogin announces that the user's session opened.
func (b *Broker) PublishLogin(userID string) {
	b.publish(b.login, userID)
}

func (b *Broker) publish(m map[int]chan string, v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range m {
		select {
		case ch <- v:
		default:
		}
	}
}
