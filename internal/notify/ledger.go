package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Ledger records which pending-transfer notifications a user has already
// been shown. Entries are append-only and never expire; a slot dismissed
// once is never promoted to the current notification again, even across
// restarts and repeated polls of the same pending event.
type Ledger interface {
	IsSeen(ctx context.Context, userID, notificationID string) (bool, error)
	MarkSeen(ctx context.Context, userID, notificationID string) error
	AllSeen(ctx context.Context, userID string) (map[string]bool, error)
}

// RedisLedger keeps one set per user under seen:{userID}.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func ledgerKey(userID string) string {
	return fmt.Sprintf("seen:%s", userID)
}

func (l *RedisLedger) IsSeen(ctx context.Context, userID, notificationID string) (bool, error) {
	return l.client.SIsMember(ctx, ledgerKey(userID), notificationID).Result()
}

func (l *RedisLedger) MarkSeen(ctx context.Context, userID, notificationID string) error {
	return l.client.SAdd(ctx, ledgerKey(userID), notificationID).Err()
}

func (l *RedisLedger) AllSeen(ctx context.Context, userID string) (map[string]bool, error) {
	ids, err := l.client.SMembers(ctx, ledgerKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// MemoryLedger is the in-process implementation used by tests.
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]map[string]bool
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]map[string]bool)}
}

func (l *MemoryLedger) IsSeen(ctx context.Context, userID, notificationID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[userID][notificationID], nil
}

func (l *MemoryLedger) MarkSeen(ctx context.Context, userID, notificationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[userID] == nil {
		l.seen[userID] = make(map[string]bool)
	}
	l.seen[userID][notificationID] = true
	return nil
}

func (l *MemoryLedger) AllSeen(ctx context.Context, userID string) (map[string]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]bool, len(l.seen[userID]))
	for id := range l.seen[userID] {
		out[id] = true
	}
	return out, nil
}
