package store

import (
	"context"
	"fmt"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/domain"
)

// RecordEventParams groups the columns of one dedup record (spec.md §5).
// ObjectID is a plain string rather than domain.ExternalId: passthrough
// events (charges and other object types) carry ids with no pi_/re_ prefix,
// and the event log only ever uses object_id for correlation, never as a
// payment lookup key.
type RecordEventParams struct {
	EventID    domain.EventId
	ObjectID   string
	EventType  string
	ProviderTS int64
	Payload    []byte
}

// RecordEventIfNew inserts the dedup record and reports whether it was new.
// A prior delivery of the same event_id returns (false, nil) — duplicate
// delivery is not an error (spec.md §5, §7).
func RecordEventIfNew(ctx context.Context, q db.Querier, p RecordEventParams) (bool, error) {
	isNew, err := q.InsertProviderEventIfNew(ctx, db.InsertProviderEventParams{
		EventID:    p.EventID.String(),
		ObjectID:   p.ObjectID,
		EventType:  p.EventType,
		ProviderTS: p.ProviderTS,
		Payload:    p.Payload,
	})
	if err != nil {
		return false, fmt.Errorf("store: record event %s: %w", p.EventID, err)
	}
	return isNew, nil
}
