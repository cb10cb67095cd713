package api

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/store"
)

// openTestDB connects to the database named by DATABASE_URL, or skips the
// test when it's unset — the same gate the teacher uses for store tests that
// need a live Postgres instance rather than a stub.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, pool.PingContext(context.Background()))
	t.Cleanup(func() { pool.Close() })
	return pool
}

// TestHandlePassthroughLogsEvent exercises the charge.succeeded path end to
// end against a live database: the event log row and the audit entry are
// written in one transaction (spec.md §4.1).
func TestHandlePassthroughLogsEvent(t *testing.T) {
	pool := openTestDB(t)
	st := store.New(pool, db.New(pool))

	s := &Server{
		store:  st,
		queue:  nil,
		cfg:    Config{StripeWebhookSecret: testWebhookSecret},
		logger: silentLogger(),
	}

	payload := chargePayload("evt_charge_1", "ch_1", 1000)
	sig := signPayload(testWebhookSecret, payload, time.Now().Unix())

	rec := doWebhook(t, s, payload, sig)

	require.Equal(t, 200, rec.Code)
	require.JSONEq(t, `{"status":"logged"}`, rec.Body.String())

	rec2 := doWebhook(t, s, payload, sig)
	require.Equal(t, 200, rec2.Code)
	require.JSONEq(t, `{"status":"duplicate"}`, rec2.Body.String())
}
