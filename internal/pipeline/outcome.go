package pipeline

import "github.com/google/uuid"

// OutcomeKind is the discriminator every caller (HTTP responses, worker
// acks) switches on — spec.md §4.5's "exactly one of" outcome set.
type OutcomeKind int

const (
	Created OutcomeKind = iota
	Updated
	Stale
	Anomaly
	Duplicate
)

func (k OutcomeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Stale:
		return "skipped"
	case Anomaly:
		return "anomaly"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Process call. ID is the zero UUID for
// Duplicate, since no payment state was touched.
type Outcome struct {
	Kind OutcomeKind
	ID   uuid.UUID
}
