// Package pipeline implements the event-processing decision engine
// (spec.md §4.5): given an incoming payment event and the current state of
// the object it refers to, decide whether to create, advance, stale-out, or
// flag the event as an anomaly, then apply that decision transactionally.
//
// The decision function itself (Decide) is pure — no I/O, no clock reads —
// so it is tested without a database, the way the teacher's
// internal/scoring package separates pure scoring from its transactional
// caller in internal/store.
package pipeline

import (
	"encoding/json"

	"github.com/fin-sync/payments-backend/internal/domain"
)

// Existing is the narrow projection of current payment state the decision
// function needs — everything else about the row is irrelevant to it.
type Existing struct {
	Status         domain.PaymentStatus
	LastProviderTS int64
}

// Incoming is the event under evaluation, already authoritative (refetched
// from the provider, never taken from a webhook payload at face value for
// status/money per spec.md §4.8).
type Incoming struct {
	Status     domain.PaymentStatus
	ProviderTS int64
}

// Action is the discriminator Decide returns; exactly one is produced per
// call (spec.md §4.5's pure decision table).
type Action int

const (
	// ActionSameStatus: incoming status equals existing status.
	ActionSameStatus Action = iota
	// ActionTemporalStale: incoming.provider_ts < existing.last_provider_ts.
	ActionTemporalStale
	// ActionAnomaly: existing.status cannot transition to incoming.status.
	ActionAnomaly
	// ActionAdvance: a valid transition.
	ActionAdvance
)

func (a Action) String() string {
	switch a {
	case ActionSameStatus:
		return "same_status"
	case ActionTemporalStale:
		return "temporal_stale"
	case ActionAnomaly:
		return "anomaly"
	case ActionAdvance:
		return "advance"
	default:
		return "unknown"
	}
}

// Decide runs the four-branch decision table in order. Order matters: a
// same-status delivery is always SameStatus even if its timestamp is also
// older, and a temporally-stale delivery is always TemporalStale even if its
// status would otherwise be an invalid transition.
func Decide(existing Existing, incoming Incoming) Action {
	switch {
	case incoming.Status == existing.Status:
		return ActionSameStatus
	case incoming.ProviderTS < existing.LastProviderTS:
		return ActionTemporalStale
	case !existing.Status.CanTransitionTo(incoming.Status):
		return ActionAnomaly
	default:
		return ActionAdvance
	}
}

// anomalyDetail and staleDetail build the free-form audit `detail` JSON
// objects named in spec.md §4.5.
func anomalyDetail(currentStatus, incomingStatus domain.PaymentStatus) json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"anomaly":         true,
		"current_status":  currentStatus.String(),
		"incoming_status": incomingStatus.String(),
	})
	return b
}

func staleDetail(currentStatus, incomingStatus domain.PaymentStatus) json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"stale":           true,
		"current_status":  currentStatus.String(),
		"incoming_status": incomingStatus.String(),
	})
	return b
}

func statusChangedDetail(oldStatus, newStatus domain.PaymentStatus) json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"old_status": oldStatus.String(),
		"new_status": newStatus.String(),
	})
	return b
}
