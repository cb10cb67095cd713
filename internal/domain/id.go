package domain

import "strings"

const (
	prefixPaymentIntent = "pi_"
	prefixRefund        = "re_"
	prefixEvent         = "evt_"
)

// ExternalId is the provider's identifier for a payment-intent or refund
// object. It always begins with one of the two fixed prefixes; construction
// validates that invariant so every ExternalId in the system is well-formed.
type ExternalId struct {
	value string
}

// NewExternalId validates id and returns an ExternalId, or a Validation error
// if id does not begin with a known prefix.
func NewExternalId(id string) (ExternalId, error) {
	if !strings.HasPrefix(id, prefixPaymentIntent) && !strings.HasPrefix(id, prefixRefund) {
		return ExternalId{}, Validationf("external id must start with %q or %q, got %q", prefixPaymentIntent, prefixRefund, id)
	}
	return ExternalId{value: id}, nil
}

// String returns the raw identifier.
func (e ExternalId) String() string { return e.value }

// IsRefund reports whether this id denotes an outbound refund object.
func (e ExternalId) IsRefund() bool { return strings.HasPrefix(e.value, prefixRefund) }

// IsPaymentIntent reports whether this id denotes an inbound payment-intent object.
func (e ExternalId) IsPaymentIntent() bool { return strings.HasPrefix(e.value, prefixPaymentIntent) }

// Direction returns the payment direction implied by this id's prefix.
func (e ExternalId) Direction() PaymentDirection {
	if e.IsRefund() {
		return DirectionOutbound
	}
	return DirectionInbound
}

// EventId is the provider's identifier for a single webhook delivery. It is
// the primary idempotency key for both the event log and the job queue.
type EventId struct {
	value string
}

// NewEventId validates id and returns an EventId, or a Validation error if id
// does not begin with the event prefix.
func NewEventId(id string) (EventId, error) {
	if !strings.HasPrefix(id, prefixEvent) {
		return EventId{}, Validationf("event id must start with %q, got %q", prefixEvent, id)
	}
	return EventId{value: id}, nil
}

// String returns the raw identifier.
func (e EventId) String() string { return e.value }
