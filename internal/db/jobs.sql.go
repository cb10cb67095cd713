package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const enqueueJobQuery = `
INSERT INTO payment_jobs (id, event_id, object_id, event_type, provider_ts, raw_event)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (event_id) DO NOTHING
`

const claimJobsQuery = `
UPDATE payment_jobs
SET status = 'processing', updated_at = now()
WHERE id IN (
	SELECT id FROM payment_jobs
	WHERE status = 'pending' AND scheduled_at <= now()
	ORDER BY scheduled_at
	LIMIT $1
	FOR UPDATE SKIP LOCKED
)
RETURNING id, event_id, object_id, event_type, provider_ts, raw_event, status, attempts, max_attempts, last_error, scheduled_at, updated_at
`

const completeJobQuery = `
UPDATE payment_jobs SET status = 'completed', updated_at = now() WHERE id = $1
`

const failJobQuery = `
UPDATE payment_jobs
SET attempts = attempts + 1,
    last_error = $2,
    status = CASE WHEN attempts + 1 >= max_attempts THEN 'failed' ELSE 'pending' END,
    scheduled_at = CASE
        WHEN attempts + 1 >= max_attempts THEN scheduled_at
        ELSE now() + make_interval(secs => power(2, attempts + 1)::int)
    END,
    updated_at = now()
WHERE id = $1
`

const reapStaleJobsQuery = `
UPDATE payment_jobs
SET status = 'pending', updated_at = now()
WHERE status = 'processing' AND updated_at < now() - interval '2 minutes'
`

func init() {
	registerQuery("EnqueueJob", enqueueJobQuery)
	registerQuery("ClaimJobs", claimJobsQuery)
	registerQuery("CompleteJob", completeJobQuery)
	registerQuery("FailJob", failJobQuery)
	registerQuery("ReapStaleJobs", reapStaleJobsQuery)
}

// EnqueueJobParams groups the columns written when a webhook accepts a
// payment-triggering event onto the durable queue.
type EnqueueJobParams struct {
	ID         uuid.UUID
	EventID    string
	ObjectID   string
	EventType  string
	ProviderTS int64
	RawEvent   []byte
}

// EnqueueJob inserts a job row and reports whether it was new (true) or a
// duplicate event_id already on the queue (false).
func (q *Queries) EnqueueJob(ctx context.Context, arg EnqueueJobParams) (bool, error) {
	res, err := q.exec(ctx, "EnqueueJob", enqueueJobQuery,
		arg.ID, arg.EventID, arg.ObjectID, arg.EventType, arg.ProviderTS, arg.RawEvent,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClaimJobs atomically selects up to limit pending, due jobs and flips them
// to processing. The UPDATE ... FOR UPDATE SKIP LOCKED subselect is a single
// statement, so it is atomic without an explicit transaction, and concurrent
// workers never contend on the same rows.
func (q *Queries) ClaimJobs(ctx context.Context, limit int32) ([]PaymentJob, error) {
	rows, err := q.queryRows(ctx, "ClaimJobs", claimJobsQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []PaymentJob
	for rows.Next() {
		var j PaymentJob
		if err := rows.Scan(
			&j.ID, &j.EventID, &j.ObjectID, &j.EventType, &j.ProviderTS, &j.RawEvent,
			&j.Status, &j.Attempts, &j.MaxAttempts, &j.LastError, &j.ScheduledAt, &j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CompleteJob marks a job terminally completed — used both for real success
// and for poison-pill discards (validation failures that should never retry).
func (q *Queries) CompleteJob(ctx context.Context, id uuid.UUID) error {
	_, err := q.exec(ctx, "CompleteJob", completeJobQuery, id)
	return err
}

// FailJobParams groups the inputs to a retry-with-backoff write.
type FailJobParams struct {
	ID    uuid.UUID
	Error sql.NullString
}

// FailJob increments attempts and either reschedules with exponential
// backoff or, once max_attempts is reached, marks the job terminally failed.
func (q *Queries) FailJob(ctx context.Context, arg FailJobParams) error {
	_, err := q.exec(ctx, "FailJob", failJobQuery, arg.ID, arg.Error)
	return err
}

// ReapStaleJobs resets any job stuck in processing for over two minutes back
// to pending and returns the number reset.
func (q *Queries) ReapStaleJobs(ctx context.Context) (int64, error) {
	res, err := q.exec(ctx, "ReapStaleJobs", reapStaleJobsQuery)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
