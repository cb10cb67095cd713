package dedupcache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/fin-sync/payments-backend/internal/dedupcache"
)

func newTestCache(t *testing.T) *dedupcache.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return dedupcache.New(rdb)
}

func TestMarkSeenThenSeenRecently(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.False(t, c.SeenRecently(ctx, "evt_1"))

	wasNew, err := c.MarkSeen(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, wasNew)

	require.True(t, c.SeenRecently(ctx, "evt_1"))
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	wasNew, err := c.MarkSeen(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, wasNew)

	wasNew, err = c.MarkSeen(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, wasNew)
}

func TestNilCacheAlwaysReportsNotSeen(t *testing.T) {
	var c *dedupcache.Cache
	ctx := context.Background()

	require.False(t, c.SeenRecently(ctx, "evt_1"))
	wasNew, err := c.MarkSeen(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, wasNew)
}
