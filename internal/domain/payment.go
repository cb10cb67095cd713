package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is a closed set. The transition table in CanTransitionTo is
// exhaustive and explicit — only the edges listed there are allowed. This is
// the current revision's table (see spec.md §9 open questions): an earlier
// revision of the upstream source allowed Succeeded→Refunded; this revision
// replaces it with Pending→Refunded and does not widen the table back.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusSucceeded PaymentStatus = "succeeded"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
)

// ParsePaymentStatus validates s against the closed set.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case StatusPending, StatusSucceeded, StatusFailed, StatusRefunded:
		return PaymentStatus(s), nil
	default:
		return "", Validationf("unknown payment status: %q", s)
	}
}

func (s PaymentStatus) String() string { return string(s) }

// IsTerminal reports whether s can never transition again.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusRefunded
}

// CanTransitionTo reports whether the edge s→next is one of the three
// allowed edges. Same-status self-loops are always false, including for
// Pending — a same-status delivery is handled as the Stale/SameStatus
// outcome by the pipeline, never as a transition.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch {
	case s == StatusPending && next == StatusSucceeded:
		return true
	case s == StatusPending && next == StatusFailed:
		return true
	case s == StatusPending && next == StatusRefunded:
		return true
	default:
		return false
	}
}

// PaymentDirection is a closed set. Payment intents are Inbound; refunds are
// Outbound and carry a ParentExternalId pointing at the originating intent.
type PaymentDirection string

const (
	DirectionInbound  PaymentDirection = "inbound"
	DirectionOutbound PaymentDirection = "outbound"
)

// ParsePaymentDirection validates s against the closed set.
func ParsePaymentDirection(s string) (PaymentDirection, error) {
	switch PaymentDirection(s) {
	case DirectionInbound, DirectionOutbound:
		return PaymentDirection(s), nil
	default:
		return "", Validationf("unknown payment direction: %q", s)
	}
}

func (d PaymentDirection) String() string { return string(d) }

// Payment is the materialized local record for one external object,
// identified by a locally-generated, time-ordered UUID (v7) so that
// insertion order and id order agree — convenient for audit correlation
// and for index locality in the payments table.
type Payment struct {
	ID                uuid.UUID
	ExternalID        string
	Source            string
	EventType         string
	Direction         PaymentDirection
	Money             Money
	Status            PaymentStatus
	Metadata          json.RawMessage
	RawEvent          json.RawMessage
	LastEventID       string
	LastProviderTS    int64
	ParentExternalID  *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewUUID generates a locally-generated, time-ordered UUID (v7) for new
// payment rows, audit entries, and job rows.
func NewUUID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the runtime's random source is broken,
		// which is unrecoverable; fall back to v4 rather than panic so a
		// flaky entropy source degrades ordering, not availability.
		return uuid.New()
	}
	return id
}
