package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// AuditAction is a closed set of reasons an audit entry was appended.
type AuditAction string

const (
	ActionCreated       AuditAction = "created"
	ActionStatusChanged AuditAction = "status_changed"
	ActionEventReceived AuditAction = "event_received"
)

// AuditEntry is an immutable record of one observed event or state change.
// event_id is unique across the audit log — a secondary idempotency guard
// alongside the event log's own uniqueness constraint.
type AuditEntry struct {
	ID         uuid.UUID
	EntityType string // always "payment"
	EntityID   *uuid.UUID
	ExternalID *string
	EventID    string
	Action     AuditAction
	Actor      string // e.g. "webhook:stripe", "worker:stripe"
	Detail     json.RawMessage
}

// NewAuditEntry builds an AuditEntry with a fresh time-ordered id.
func NewAuditEntry(entityID *uuid.UUID, externalID *string, eventID string, action AuditAction, actor string, detail json.RawMessage) AuditEntry {
	return AuditEntry{
		ID:         NewUUID(),
		EntityType: "payment",
		EntityID:   entityID,
		ExternalID: externalID,
		EventID:    eventID,
		Action:     action,
		Actor:      actor,
		Detail:     detail,
	}
}
