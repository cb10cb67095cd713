package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const getExistingPaymentQuery = `
SELECT id, status, last_provider_ts FROM payments WHERE external_id = $1
`

const findPaymentIDQuery = `
SELECT id FROM payments WHERE external_id = $1
`

const insertPaymentQuery = `
INSERT INTO payments (
	id, external_id, source, event_type, direction, amount, currency, status,
	metadata, raw_event, last_event_id, last_provider_ts, parent_external_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, external_id, source, event_type, direction, amount, currency, status,
	metadata, raw_event, last_event_id, last_provider_ts, parent_external_id, created_at, updated_at
`

const updatePaymentStatusQuery = `
UPDATE payments
SET status = $1, last_event_id = $2, last_provider_ts = $3, raw_event = $4, updated_at = now()
WHERE id = $5
RETURNING id, external_id, source, event_type, direction, amount, currency, status,
	metadata, raw_event, last_event_id, last_provider_ts, parent_external_id, created_at, updated_at
`

const touchEventQuery = `
UPDATE payments SET last_event_id = $1, updated_at = now() WHERE id = $2
`

const touchEventWithTSQuery = `
UPDATE payments
SET last_event_id = $1, last_provider_ts = GREATEST(last_provider_ts, $2), updated_at = now()
WHERE id = $3
`

func init() {
	registerQuery("GetExistingPayment", getExistingPaymentQuery)
	registerQuery("FindPaymentID", findPaymentIDQuery)
	registerQuery("InsertPayment", insertPaymentQuery)
	registerQuery("UpdatePaymentStatus", updatePaymentStatusQuery)
	registerQuery("TouchEvent", touchEventQuery)
	registerQuery("TouchEventWithTS", touchEventWithTSQuery)
}

// GetExistingPayment returns sql.ErrNoRows when no payment exists for
// externalID — callers treat that as the pipeline's "absent" branch.
func (q *Queries) GetExistingPayment(ctx context.Context, externalID string) (ExistingPayment, error) {
	row := q.queryRow(ctx, "GetExistingPayment", getExistingPaymentQuery, externalID)
	var e ExistingPayment
	err := row.Scan(&e.ID, &e.Status, &e.LastProviderTS)
	return e, err
}

// FindPaymentID returns sql.ErrNoRows when no payment exists for externalID.
func (q *Queries) FindPaymentID(ctx context.Context, externalID string) (uuid.UUID, error) {
	row := q.queryRow(ctx, "FindPaymentID", findPaymentIDQuery, externalID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

// InsertPaymentParams groups the columns written on first sight of an
// external_id.
type InsertPaymentParams struct {
	ID               uuid.UUID
	ExternalID       string
	Source           string
	EventType        string
	Direction        string
	Amount           int64
	Currency         string
	Status           string
	Metadata         []byte
	RawEvent         []byte
	LastEventID      string
	LastProviderTS   int64
	ParentExternalID sql.NullString
}

func (q *Queries) InsertPayment(ctx context.Context, arg InsertPaymentParams) (Payment, error) {
	row := q.queryRow(ctx, "InsertPayment", insertPaymentQuery,
		arg.ID, arg.ExternalID, arg.Source, arg.EventType, arg.Direction, arg.Amount, arg.Currency,
		arg.Status, arg.Metadata, arg.RawEvent, arg.LastEventID, arg.LastProviderTS, arg.ParentExternalID,
	)
	return scanPayment(row)
}

// UpdatePaymentStatusParams advances status plus the event-tracking fields in
// one write, per spec.md §4.3.
type UpdatePaymentStatusParams struct {
	ID             uuid.UUID
	Status         string
	LastEventID    string
	LastProviderTS int64
	RawEvent       []byte
}

func (q *Queries) UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (Payment, error) {
	row := q.queryRow(ctx, "UpdatePaymentStatus", updatePaymentStatusQuery,
		arg.Status, arg.LastEventID, arg.LastProviderTS, arg.RawEvent, arg.ID,
	)
	return scanPayment(row)
}

// TouchEventParams updates only last_event_id — used for the TemporalStale
// path, which must not move last_provider_ts. The SameStatus and anomaly
// paths advance provider_ts via TouchEventWithTS instead.
type TouchEventParams struct {
	ID          uuid.UUID
	LastEventID string
}

func (q *Queries) TouchEvent(ctx context.Context, arg TouchEventParams) error {
	_, err := q.exec(ctx, "TouchEvent", touchEventQuery, arg.LastEventID, arg.ID)
	return err
}

// TouchEventWithTSParams updates last_event_id and bumps last_provider_ts to
// the max of itself and the incoming timestamp (spec.md §4.3).
type TouchEventWithTSParams struct {
	ID          uuid.UUID
	LastEventID string
	ProviderTS  int64
}

func (q *Queries) TouchEventWithTS(ctx context.Context, arg TouchEventWithTSParams) error {
	_, err := q.exec(ctx, "TouchEventWithTS", touchEventWithTSQuery, arg.LastEventID, arg.ProviderTS, arg.ID)
	return err
}

func scanPayment(row *sql.Row) (Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.ExternalID, &p.Source, &p.EventType, &p.Direction, &p.Amount, &p.Currency, &p.Status,
		&p.Metadata, &p.RawEvent, &p.LastEventID, &p.LastProviderTS, &p.ParentExternalID, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
