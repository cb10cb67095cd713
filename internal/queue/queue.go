// Package queue wraps db.Querier's job methods with domain types, the same
// layering the teacher applies between internal/store and internal/db.
package queue

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/domain"
)

// Queue is a thin wrapper over db.Querier's job-queue operations
// (spec.md §4.6). It holds no state of its own — every method maps directly
// to one prepared statement.
type Queue struct {
	q db.Querier
}

// New wraps q for job-queue operations.
func New(q db.Querier) *Queue {
	return &Queue{q: q}
}

// EnqueueParams groups the columns written when a webhook accepts a
// payment-triggering event.
type EnqueueParams struct {
	EventID    domain.EventId
	ObjectID   domain.ExternalId
	EventType  string
	ProviderTS int64
	RawEvent   []byte
}

// Enqueue inserts a job row, idempotent on event_id. Returns true iff
// accepted as new; false means a prior delivery already holds the slot.
func (qu *Queue) Enqueue(ctx context.Context, p EnqueueParams) (bool, error) {
	rawEvent := p.RawEvent
	if len(rawEvent) == 0 {
		rawEvent = []byte("{}")
	}
	accepted, err := qu.q.EnqueueJob(ctx, db.EnqueueJobParams{
		ID:         domain.NewUUID(),
		EventID:    p.EventID.String(),
		ObjectID:   p.ObjectID.String(),
		EventType:  p.EventType,
		ProviderTS: p.ProviderTS,
		RawEvent:   rawEvent,
	})
	if err != nil {
		return false, fmt.Errorf("queue: enqueue %s: %w", p.EventID, err)
	}
	return accepted, nil
}

// Claim atomically selects up to limit pending, due jobs and flips them to
// processing (spec.md §4.6) — row-level locking with SKIP LOCKED means
// concurrent workers never contend on the same rows.
func (qu *Queue) Claim(ctx context.Context, limit int) ([]domain.Job, error) {
	rows, err := qu.q.ClaimJobs(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("queue: claim: %w", err)
	}

	jobs := make([]domain.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, toDomainJob(r))
	}
	return jobs, nil
}

// Complete marks a job terminally completed — used both for real success and
// for poison-pill discards of validation failures that should never retry.
func (qu *Queue) Complete(ctx context.Context, id uuid.UUID) error {
	if err := qu.q.CompleteJob(ctx, id); err != nil {
		return fmt.Errorf("queue: complete %s: %w", id, err)
	}
	return nil
}

// Fail increments attempts and either reschedules with exponential backoff
// or, once max_attempts is reached, marks the job terminally failed.
func (qu *Queue) Fail(ctx context.Context, id uuid.UUID, cause error) error {
	msg := sql.NullString{String: cause.Error(), Valid: true}
	if err := qu.q.FailJob(ctx, db.FailJobParams{ID: id, Error: msg}); err != nil {
		return fmt.Errorf("queue: fail %s: %w", id, err)
	}
	return nil
}

// ReapStale resets any job stuck in processing for over two minutes back to
// pending and returns the number reset.
func (qu *Queue) ReapStale(ctx context.Context) (int64, error) {
	n, err := qu.q.ReapStaleJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("queue: reap stale: %w", err)
	}
	return n, nil
}

func toDomainJob(r db.PaymentJob) domain.Job {
	var lastErr *string
	if r.LastError.Valid {
		s := r.LastError.String
		lastErr = &s
	}

	var rawEvent []byte
	if r.RawEvent.Valid {
		rawEvent = r.RawEvent.RawMessage
	}

	return domain.Job{
		ID:          r.ID,
		EventID:     r.EventID,
		ObjectID:    r.ObjectID,
		EventType:   r.EventType,
		ProviderTS:  r.ProviderTS,
		RawEvent:    rawEvent,
		Status:      domain.JobStatus(r.Status),
		Attempts:    int(r.Attempts),
		MaxAttempts: int(r.MaxAttempts),
		LastError:   lastErr,
		ScheduledAt: r.ScheduledAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
