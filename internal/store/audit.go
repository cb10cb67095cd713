package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin-sync/payments-backend/internal/db"
	"github.com/fin-sync/payments-backend/internal/domain"
)

// AppendAudit writes one audit_log row, idempotent on event_id (spec.md
// §4.4): a retried webhook delivery never produces a second entry.
func AppendAudit(ctx context.Context, q db.Querier, entry domain.AuditEntry) (bool, error) {
	var entityID uuid.NullUUID
	if entry.EntityID != nil {
		entityID = uuid.NullUUID{UUID: *entry.EntityID, Valid: true}
	}

	var externalID sql.NullString
	if entry.ExternalID != nil {
		externalID = sql.NullString{String: *entry.ExternalID, Valid: true}
	}

	detail := entry.Detail
	if detail == nil {
		detail = []byte("{}")
	}

	isNew, err := q.InsertAuditEntryIfNew(ctx, db.InsertAuditEntryParams{
		ID:         entry.ID,
		EntityType: entry.EntityType,
		EntityID:   entityID,
		ExternalID: externalID,
		EventID:    entry.EventID,
		Action:     string(entry.Action),
		Actor:      entry.Actor,
		Detail:     detail,
	})
	if err != nil {
		return false, fmt.Errorf("store: append audit %s: %w", entry.EventID, err)
	}
	return isNew, nil
}
