package provider

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"

	"github.com/fin-sync/payments-backend/internal/domain"
)

// stripeClient implements Client against the official stripe-go SDK,
// dispatching by ExternalId prefix (spec.md §4.8): payment-intent ids go to
// paymentintent.Get, refund ids go to refund.Get. Unknown prefixes never
// reach here — domain.NewExternalId already rejects them at construction.
type stripeClient struct {
	secretKey string
}

// NewStripeClient returns a Client backed by the Stripe SDK. secretKey is
// the STRIPE_SECRET_KEY env var.
func NewStripeClient(secretKey string) Client {
	return &stripeClient{secretKey: secretKey}
}

func (c *stripeClient) FetchPayment(ctx context.Context, id domain.ExternalId) (FetchedPayment, error) {
	stripe.Key = c.secretKey

	switch {
	case id.IsPaymentIntent():
		return c.fetchPaymentIntent(ctx, id)
	case id.IsRefund():
		return c.fetchRefund(ctx, id)
	default:
		// Unreachable: domain.NewExternalId already enforces the prefix
		// invariant, but the provider client stays defensive at its own
		// boundary per spec.md §4.8 ("unknown prefixes are rejected").
		return FetchedPayment{}, domain.Providerf(nil, "unrecognized external id prefix: %s", id)
	}
}

func (c *stripeClient) fetchPaymentIntent(ctx context.Context, id domain.ExternalId) (FetchedPayment, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id.String(), params)
	if err != nil {
		return FetchedPayment{}, domain.Providerf(err, "fetch payment intent %s", id)
	}

	status, err := mapPaymentIntentStatus(pi.Status)
	if err != nil {
		return FetchedPayment{}, err
	}

	money, err := domain.NewMoney(pi.Amount, string(pi.Currency))
	if err != nil {
		return FetchedPayment{}, domain.Providerf(err, "payment intent %s has invalid amount/currency", id)
	}

	return FetchedPayment{
		ExternalID: id,
		Direction:  domain.DirectionInbound,
		Status:     status,
		Money:      money,
		Metadata:   pi.Metadata,
		Created:    pi.Created,
	}, nil
}

func (c *stripeClient) fetchRefund(ctx context.Context, id domain.ExternalId) (FetchedPayment, error) {
	params := &stripe.RefundParams{}
	params.Context = ctx

	r, err := refund.Get(id.String(), params)
	if err != nil {
		return FetchedPayment{}, domain.Providerf(err, "fetch refund %s", id)
	}

	status, err := mapRefundStatus(r.Status)
	if err != nil {
		return FetchedPayment{}, err
	}

	money, err := domain.NewMoney(r.Amount, string(r.Currency))
	if err != nil {
		return FetchedPayment{}, domain.Providerf(err, "refund %s has invalid amount/currency", id)
	}

	var parent string
	if r.PaymentIntent != nil {
		parent = r.PaymentIntent.ID
	}

	return FetchedPayment{
		ExternalID:       id,
		Direction:        domain.DirectionOutbound,
		Status:           status,
		Money:            money,
		ParentExternalID: parent,
		Created:          r.Created,
	}, nil
}

func mapPaymentIntentStatus(s stripe.PaymentIntentStatus) (domain.PaymentStatus, error) {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.StatusSucceeded, nil
	case stripe.PaymentIntentStatusCanceled:
		return domain.StatusFailed, nil
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresCapture:
		return domain.StatusPending, nil
	default:
		return "", fmt.Errorf("provider: unmapped payment intent status %q", s)
	}
}

func mapRefundStatus(s string) (domain.PaymentStatus, error) {
	switch s {
	case "succeeded":
		return domain.StatusRefunded, nil
	case "pending", "requires_action":
		return domain.StatusPending, nil
	case "failed", "canceled":
		return domain.StatusFailed, nil
	default:
		return "", fmt.Errorf("provider: unmapped refund status %q", s)
	}
}
