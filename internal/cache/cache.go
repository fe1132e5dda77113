package cache

import (
	"context"
	"time"
)

// Cache is a keyed, TTL-bounded snapshot store. There is no read-through;
// callers recompute on a miss. Staleness up to the TTL is acceptable.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}
