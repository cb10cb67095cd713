// Package provider fetches authoritative object state from the payment
// provider (spec.md §4.8). The core pipeline never trusts a webhook
// payload's status or money directly; every pipeline run is fed a
// FetchedPayment built from a live provider lookup.
package provider

import (
	"context"

	"github.com/fin-sync/payments-backend/internal/domain"
)

// FetchedPayment is the authoritative object state the provider client
// returns for one ExternalId.
type FetchedPayment struct {
	ExternalID       domain.ExternalId
	Direction        domain.PaymentDirection
	Status           domain.PaymentStatus
	Money            domain.Money
	Metadata         map[string]string
	ParentExternalID string // empty unless ExternalID denotes a refund
	Created          int64  // provider timestamp (unix seconds)
}

// Client is the single-method interface the worker depends on, so a test
// double can be substituted (spec.md §9 "dynamic dispatch").
type Client interface {
	FetchPayment(ctx context.Context, id domain.ExternalId) (FetchedPayment, error)
}
