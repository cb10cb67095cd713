package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const insertAuditEntryQuery = `
INSERT INTO audit_log (id, entity_type, entity_id, external_id, event_id, action, actor, detail)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (event_id) DO NOTHING
`

func init() {
	registerQuery("InsertAuditEntryIfNew", insertAuditEntryQuery)
}

// InsertAuditEntryParams groups the columns of one audit_log row.
type InsertAuditEntryParams struct {
	ID         uuid.UUID
	EntityType string
	EntityID   uuid.NullUUID
	ExternalID sql.NullString
	EventID    string
	Action     string
	Actor      string
	Detail     []byte
}

// InsertAuditEntryIfNew appends an audit entry. Insert is idempotent on
// event_id (conflict => no-op, result = false) — the writer never fails for
// duplicate delivery, only on underlying store errors (spec.md §4.4).
func (q *Queries) InsertAuditEntryIfNew(ctx context.Context, arg InsertAuditEntryParams) (bool, error) {
	res, err := q.exec(ctx, "InsertAuditEntryIfNew", insertAuditEntryQuery,
		arg.ID, arg.EntityType, arg.EntityID, arg.ExternalID, arg.EventID, arg.Action, arg.Actor, arg.Detail,
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
