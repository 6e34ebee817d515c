package job

import (
	"context"
	"time"
)

// Broker is the minimal Redis-compatible surface the job pipeline
// needs: a FIFO queue (LPUSH/BRPOP) and a TTL-bound key/value store.
type Broker interface {
	// Push enqueues value at the head of the list at key (LPUSH).
	Push(ctx context.Context, key string, value string) error
	// BlockingPop pops from the tail of the list at key, blocking up to
	// timeout (BRPOP). Returns ok=false on timeout with no error.
	BlockingPop(ctx context.Context, key string, timeout time.Duration) (value string, ok bool, err error)
	// Set stores value at key with a TTL.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get retrieves the value at key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Ping verifies connectivity for readiness checks.
	Ping(ctx context.Context) error
}
