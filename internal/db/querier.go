package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Querier is the full set of single-query operations the rest of the service
// depends on. store and pipeline hold a Querier, never a *Queries directly,
// so tests can substitute a stub (see internal/api/webhook_test.go).
type Querier interface {
	// ─── transaction controls ──────────────────────────────────────────────
	// SetLockTimeout and AdvisoryLock only do anything meaningful when q is
	// scoped to a transaction (via WithTx); both are no-ops-that-still-talk-
	// to-Postgres outside one, which is never how the pipeline calls them.
	SetLockTimeout(ctx context.Context, d time.Duration) error
	AdvisoryLock(ctx context.Context, key string) error

	// ─── payments ──────────────────────────────────────────────────────────
	GetExistingPayment(ctx context.Context, externalID string) (ExistingPayment, error)
	FindPaymentID(ctx context.Context, externalID string) (uuid.UUID, error)
	InsertPayment(ctx context.Context, arg InsertPaymentParams) (Payment, error)
	UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (Payment, error)
	TouchEvent(ctx context.Context, arg TouchEventParams) error
	TouchEventWithTS(ctx context.Context, arg TouchEventWithTSParams) error

	// ─── provider events (dedup) ───────────────────────────────────────────
	InsertProviderEventIfNew(ctx context.Context, arg InsertProviderEventParams) (bool, error)

	// ─── audit log ─────────────────────────────────────────────────────────
	InsertAuditEntryIfNew(ctx context.Context, arg InsertAuditEntryParams) (bool, error)

	// ─── job queue ─────────────────────────────────────────────────────────
	EnqueueJob(ctx context.Context, arg EnqueueJobParams) (bool, error)
	ClaimJobs(ctx context.Context, limit int32) ([]PaymentJob, error)
	CompleteJob(ctx context.Context, id uuid.UUID) error
	FailJob(ctx context.Context, arg FailJobParams) error
	ReapStaleJobs(ctx context.Context) (int64, error)
}

var _ Querier = (*Queries)(nil)
