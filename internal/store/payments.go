package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/domain"
)

// LookupPayment returns the payment's id, status and last_provider_ts for
// externalID, or (nil, nil) when no payment exists yet — the pipeline's
// "absent" branch (spec.md §4.5).
func (s *Store) LookupPayment(ctx context.Context, externalID domain.ExternalId) (*db.ExistingPayment, error) {
	return GetExisting(ctx, s.q, externalID)
}

// GetExisting is the Querier-parametrized form of LookupPayment, for use
// inside a pipeline transaction where the caller already holds a
// transaction-scoped Querier rather than a *Store.
func GetExisting(ctx context.Context, q db.Querier, externalID domain.ExternalId) (*db.ExistingPayment, error) {
	existing, err := q.GetExistingPayment(ctx, externalID.String())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: lookup payment %s: %w", externalID, err)
	}
	return &existing, nil
}

// CreatePaymentParams groups the fields written on first sight of an
// external_id, inside the pipeline's advisory-locked transaction.
type CreatePaymentParams struct {
	ExternalID       domain.ExternalId
	Source           string
	EventType        string
	Direction        domain.PaymentDirection
	Amount           domain.MoneyAmount
	Currency         domain.Currency
	Status           domain.PaymentStatus
	Metadata         []byte
	RawEvent         []byte
	LastEventID      domain.EventId
	LastProviderTS   int64
	ParentExternalID string
}

// CreatePayment inserts the first row for a never-before-seen external_id. q
// must be a transactional Querier obtained inside WithTx — this is never
// called standalone because it always follows the advisory lock and dedup
// insert in the same transaction (spec.md §4.5).
func CreatePayment(ctx context.Context, q db.Querier, p CreatePaymentParams) (db.Payment, error) {
	parent := sql.NullString{String: p.ParentExternalID, Valid: p.ParentExternalID != ""}

	row, err := q.InsertPayment(ctx, db.InsertPaymentParams{
		ID:               domain.NewUUID(),
		ExternalID:       p.ExternalID.String(),
		Source:           p.Source,
		EventType:        p.EventType,
		Direction:        p.Direction.String(),
		Amount:           p.Amount.Cents(),
		Currency:         p.Currency.String(),
		Status:           p.Status.String(),
		Metadata:         p.Metadata,
		RawEvent:         p.RawEvent,
		LastEventID:      p.LastEventID.String(),
		LastProviderTS:   p.LastProviderTS,
		ParentExternalID: parent,
	})
	if err != nil {
		return db.Payment{}, fmt.Errorf("store: create payment %s: %w", p.ExternalID, err)
	}
	return row, nil
}

// AdvancePaymentParams groups the fields written when an existing payment
// moves to a new status.
type AdvancePaymentParams struct {
	ID             uuid.UUID
	Status         domain.PaymentStatus
	LastEventID    domain.EventId
	LastProviderTS int64
	RawEvent       []byte
}

// AdvancePayment updates status and the event-tracking columns together, the
// Advance branch of the decision table (spec.md §4.5).
func AdvancePayment(ctx context.Context, q db.Querier, p AdvancePaymentParams) (db.Payment, error) {
	row, err := q.UpdatePaymentStatus(ctx, db.UpdatePaymentStatusParams{
		ID:             p.ID,
		Status:         p.Status.String(),
		LastEventID:    p.LastEventID.String(),
		LastProviderTS: p.LastProviderTS,
		RawEvent:       p.RawEvent,
	})
	if err != nil {
		return db.Payment{}, fmt.Errorf("store: advance payment %s: %w", p.ID, err)
	}
	return row, nil
}

// TouchEventWithTS records last_event_id and bumps last_provider_ts to the
// max of itself and providerTS, without changing status — used by both the
// SameStatus and LogAnomaly branches (spec.md §4.5): the event is recorded
// but the state machine does not move.
func TouchEventWithTS(ctx context.Context, q db.Querier, id uuid.UUID, eventID domain.EventId, providerTS int64) error {
	if err := q.TouchEventWithTS(ctx, db.TouchEventWithTSParams{
		ID:          id,
		LastEventID: eventID.String(),
		ProviderTS:  providerTS,
	}); err != nil {
		return fmt.Errorf("store: touch event with ts %s: %w", id, err)
	}
	return nil
}

// TouchStale records last_event_id only — the Stale branch (spec.md §4.5):
// an out-of-order event is logged but must never move last_provider_ts
// backwards, so it is left untouched.
func TouchStale(ctx context.Context, q db.Querier, id uuid.UUID, eventID domain.EventId) error {
	if err := q.TouchEvent(ctx, db.TouchEventParams{ID: id, LastEventID: eventID.String()}); err != nil {
		return fmt.Errorf("store: touch stale %s: %w", id, err)
	}
	return nil
}
