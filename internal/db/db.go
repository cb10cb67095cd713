// Package db is the hand-written equivalent of a sqlc "prepared queries"
// package: a DBTX abstraction that both *sql.DB and *sql.Tx satisfy, a
// Queries type that holds one prepared statement per named query, and a
// Querier interface so callers (store, pipeline) depend on behavior, not a
// concrete connection type.
package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, letting every query run
// either directly against the pool or scoped inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryRegistry is filled by each *.sql.go file's init() with the query text
// behind its name, so Prepare can build one *sql.Stmt per query without
// every file needing to know about every other file.
var queryRegistry = map[string]string{}

func registerQuery(name, query string) {
	if _, exists := queryRegistry[name]; exists {
		panic(fmt.Sprintf("db: duplicate query name %q", name))
	}
	queryRegistry[name] = query
}

// Queries implements Querier. stmts is nil for a tx-scoped instance created
// via WithTx or for New — those run the raw SQL text directly, since
// preparing inside a short-lived transaction buys nothing.
type Queries struct {
	db    DBTX
	stmts map[string]*sql.Stmt
}

// New wraps a DBTX with no prepared statements. Used for transaction-scoped
// instances via WithTx and in tests against a bare *sql.DB.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries scoped to tx. Re-used across a single pipeline or
// store transaction so every call inside it participates in the same commit.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Prepare opens one prepared statement per registered query against pool and
// returns a Queries backed by them. Because PrepareContext round-trips to
// Postgres to validate the statement's shape against the live schema, a
// mismatch (missing column, renamed table) fails here at startup rather than
// on the first request.
func Prepare(ctx context.Context, pool *sql.DB) (*Queries, error) {
	q := &Queries{db: pool, stmts: make(map[string]*sql.Stmt, len(queryRegistry))}
	for name, query := range queryRegistry {
		stmt, err := pool.PrepareContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("db: prepare %s: %w", name, err)
		}
		q.stmts[name] = stmt
	}
	return q, nil
}

// exec runs a named statement, preferring the prepared form when available.
func (q *Queries) exec(ctx context.Context, name, query string, args ...any) (sql.Result, error) {
	if stmt, ok := q.stmts[name]; ok {
		return stmt.ExecContext(ctx, args...)
	}
	return q.db.ExecContext(ctx, query, args...)
}

// queryRow runs a named statement, preferring the prepared form when available.
func (q *Queries) queryRow(ctx context.Context, name, query string, args ...any) *sql.Row {
	if stmt, ok := q.stmts[name]; ok {
		return stmt.QueryRowContext(ctx, args...)
	}
	return q.db.QueryRowContext(ctx, query, args...)
}

// queryRows runs a named statement, preferring the prepared form when available.
func (q *Queries) queryRows(ctx context.Context, name, query string, args ...any) (*sql.Rows, error) {
	if stmt, ok := q.stmts[name]; ok {
		return stmt.QueryContext(ctx, args...)
	}
	return q.db.QueryContext(ctx, query, args...)
}
