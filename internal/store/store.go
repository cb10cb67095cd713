// Package store wraps db.Querier with transaction support. Unlike the
// teacher's store package (which opens every transaction Serializable
// because its write paths are plain read-then-write), this service's
// concurrency correctness comes from the pipeline's explicit per-object
// advisory lock (spec.md §4.5, §5) plus unique constraints on external_id and
// event_id — so plain read-committed transactions are sufficient and avoid
// spurious serialization failures under load.
//
// Dependency rule: store imports db and domain only. It never imports api,
// worker, or provider.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fin-sync/payments-backend/internal/db"
)

// Store holds a *sql.DB for starting transactions and a db.Querier for
// executing queries outside of transactions.
type Store struct {
	// pool is the raw connection pool, used only to begin transactions.
	pool *sql.DB

	// q is the Querier used for non-transactional calls. Handlers that hold a
	// *Store can also access it directly via store.Q() for single-query reads.
	q db.Querier
}

// New creates a Store from a live connection pool. The pool must already be
// open and verified (e.g. via pool.PingContext) before calling New.
func New(pool *sql.DB, q db.Querier) *Store {
	return &Store{pool: pool, q: q}
}

// Q exposes the underlying Querier so callers can run single-query reads
// without going through a transaction.
//
//	payment, err := s.Q().GetExistingPayment(ctx, externalID)
func (s *Store) Q() db.Querier {
	return s.q
}

// TxFunc is a function that receives a transactional Querier and returns an
// error. Returning a non-nil error causes WithTx to roll back automatically.
type TxFunc func(ctx context.Context, q db.Querier) error

// WithTx begins a transaction, passes a Querier scoped to that transaction to
// fn, and commits on success or rolls back on any error (including panics).
func (s *Store) WithTx(ctx context.Context, fn TxFunc) error {
	tx, err := s.pool.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	// Roll back on panic so the connection is never left in a broken state.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // re-panic after rollback
		}
	}()

	txQ := s.baseQueries().WithTx(tx)

	if err := fn(ctx, txQ); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: fn error: %w; rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

// baseQueries type-asserts the stored Querier to *db.Queries so its WithTx
// method is reachable. Tests that exercise Store.WithTx must supply a real
// *db.Queries backed by a live *sql.DB; the pipeline's pure decision logic is
// tested separately, with no Querier at all.
func (s *Store) baseQueries() *db.Queries {
	qs, ok := s.q.(*db.Queries)
	if !ok {
		panic("store: underlying Querier is not *db.Queries; WithTx requires a real connection")
	}
	return qs
}