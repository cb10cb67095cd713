package pipeline

import (
	"encoding/json"

	"github.com/fin-sync/payments-backend/internal/domain"
)

// IncomingPayment is the materialized event the pipeline acts on, built
// either from a webhook's authoritative refetch or from a worker-claimed job
// (spec.md §4.5). Status and Money always come from the provider client, per
// spec.md §4.8 — never taken at face value from a webhook payload.
type IncomingPayment struct {
	ExternalID       domain.ExternalId
	EventID          domain.EventId
	Source           string
	EventType        string
	Direction        domain.PaymentDirection
	Money            domain.Money
	Status           domain.PaymentStatus
	Metadata         json.RawMessage
	RawEvent         json.RawMessage
	ProviderTS       int64
	ParentExternalID string // empty when not a refund
}
