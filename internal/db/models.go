package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Payment mirrors the payments table (spec.md §6).
type Payment struct {
	ID               uuid.UUID
	ExternalID       string
	Source           string
	EventType        string
	Direction        string
	Amount           int64
	Currency         string
	Status           string
	Metadata         pqtype.NullRawMessage
	RawEvent         pqtype.NullRawMessage
	LastEventID      string
	LastProviderTS   int64
	ParentExternalID sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ExistingPayment is the narrow projection the pipeline reads before
// deciding an action — just enough state to run the decision table.
type ExistingPayment struct {
	ID             uuid.UUID
	Status         string
	LastProviderTS int64
}

// ProviderEvent mirrors the provider_events table. Used only for dedup;
// payload is written but never read back.
type ProviderEvent struct {
	EventID    string
	ObjectID   string
	EventType  string
	ProviderTS int64
	Payload    pqtype.NullRawMessage
	ReceivedAt time.Time
}

// AuditLogEntry mirrors the audit_log table.
type AuditLogEntry struct {
	ID         uuid.UUID
	EntityType string
	EntityID   uuid.NullUUID
	ExternalID sql.NullString
	EventID    string
	Action     string
	Actor      string
	Detail     pqtype.NullRawMessage
	CreatedAt  time.Time
}

// PaymentJob mirrors the payment_jobs table.
type PaymentJob struct {
	ID          uuid.UUID
	EventID     string
	ObjectID    string
	EventType   string
	ProviderTS  int64
	RawEvent    pqtype.NullRawMessage
	Status      string
	Attempts    int32
	MaxAttempts int32
	LastError   sql.NullString
	ScheduledAt time.Time
	UpdatedAt   time.Time
}
