package db

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"
)

// SET LOCAL only affects the current transaction; it is meaningless (and
// harmless) outside one. Postgres does not accept a parameter here, so the
// duration is formatted into the statement text — safe because d comes from
// a compile-time constant (pipeline.lockTimeout), never user input.
func setLockTimeoutQuery(d time.Duration) string {
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds())
}

const advisoryLockQuery = `SELECT pg_advisory_xact_lock($1)`

func (q *Queries) SetLockTimeout(ctx context.Context, d time.Duration) error {
	_, err := q.db.ExecContext(ctx, setLockTimeoutQuery(d))
	return err
}

// AdvisoryLock serializes all processing for one external_id across every
// worker and webhook handler, even before any payments row exists for it.
// Hash collisions between unrelated external_ids are acceptable — occasional
// false serialization does not affect correctness (spec.md §9).
func (q *Queries) AdvisoryLock(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, advisoryLockQuery, hashKey(key))
	return err
}

// hashKey mirrors Postgres's own hashtext() class of keying: a stable,
// collision-tolerant int4 derived from the external_id string. We compute it
// in Go rather than calling hashtext(key) in SQL so the lock key is visible
// to Go-side tests without a database round trip.
func hashKey(key string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int32(h.Sum32())
}
