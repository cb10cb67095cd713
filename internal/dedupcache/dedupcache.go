// Package dedupcache is a best-effort fast-path cache in front of the
// Postgres event log (SPEC_FULL.md DOMAIN STACK). Under a retry storm from
// the provider, checking Redis first sheds duplicate-delivery load before it
// reaches the database; Postgres's event_id uniqueness constraint remains
// the single source of truth per spec.md §5; the cache is allowed to be
// wrong in either direction (a false "new" just falls through to the
// Postgres insert-if-new, a false "seen" in the worst case only delays a
// legitimate retry by the key's TTL).
package dedupcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultTTL bounds how long a key is remembered — long enough to absorb a
// provider's retry window, short enough not to grow unbounded.
const defaultTTL = 24 * time.Hour

// Cache wraps a redis client. A nil *Cache is valid and always reports
// "not seen" — the dedupcache is optional (SPEC_FULL.md: REDIS_URL unset
// disables it) and Postgres alone is still correct without it.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps an existing redis client.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb, ttl: defaultTTL}
}

// SeenRecently reports whether eventID was recorded by a prior call to
// MarkSeen within the TTL window. A Redis error is treated as "not seen" —
// the cache missing is always safe, since Postgres still enforces
// uniqueness on the real insert.
func (c *Cache) SeenRecently(ctx context.Context, eventID string) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	n, err := c.rdb.Exists(ctx, cacheKey(eventID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// MarkSeen records eventID with SETNX semantics so concurrent callers agree
// on who saw it first; the return value is unused by callers today but
// mirrors the provider's own "was-new" signal for symmetry with
// store.RecordEventIfNew.
func (c *Cache) MarkSeen(ctx context.Context, eventID string) (wasNew bool, err error) {
	if c == nil || c.rdb == nil {
		return true, nil
	}
	ok, err := c.rdb.SetNX(ctx, cacheKey(eventID), 1, c.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func cacheKey(eventID string) string {
	return "dedup:event:" + eventID
}
