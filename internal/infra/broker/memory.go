package broker

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/ragchat/internal/domain/job"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryBroker is an in-process job.Broker for local development and
// tests. Lists are backed by buffered channels created on first use;
// the key/value store is a mutex-guarded map with lazy TTL eviction.
type MemoryBroker struct {
	mu    sync.Mutex
	lists map[string]chan string
	kv    map[string]memoryEntry
}

// NewMemoryBroker constructs a MemoryBroker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		lists: make(map[string]chan string),
		kv:    make(map[string]memoryEntry),
	}
}

func (b *MemoryBroker) list(key string) chan string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.lists[key]
	if !ok {
		ch = make(chan string, 4096)
		b.lists[key] = ch
	}
	return ch
}

// Push implements job.Broker.
func (b *MemoryBroker) Push(_ context.Context, key string, value string) error {
	b.list(key) <- value
	return nil
}

// BlockingPop implements job.Broker.
func (b *MemoryBroker) BlockingPop(ctx context.Context, key string, timeout time.Duration) (string, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case value := <-b.list(key):
		return value, true, nil
	case <-timer.C:
		return "", false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// Set implements job.Broker.
func (b *MemoryBroker) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	b.kv[key] = memoryEntry{value: value, expiresAt: expiresAt}
	return nil
}

// Get implements job.Broker.
func (b *MemoryBroker) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.kv[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(b.kv, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Ping implements job.Broker; always succeeds for the in-process broker.
func (b *MemoryBroker) Ping(_ context.Context) error {
	return nil
}

var _ job.Broker = (*MemoryBroker)(nil)
