package provider

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/fin-sync/payments-backend/internal/domain"
)

func TestMapPaymentIntentStatus(t *testing.T) {
	cases := map[string]domain.PaymentStatus{
		"succeeded":               domain.StatusSucceeded,
		"canceled":                domain.StatusFailed,
		"requires_payment_method": domain.StatusPending,
		"requires_action":         domain.StatusPending,
		"processing":              domain.StatusPending,
	}
	for in, want := range cases {
		got, err := mapPaymentIntentStatus(stripe.PaymentIntentStatus(in))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestMapPaymentIntentStatusUnknown(t *testing.T) {
	_, err := mapPaymentIntentStatus(stripe.PaymentIntentStatus("some_future_status"))
	require.Error(t, err)
}

func TestMapRefundStatus(t *testing.T) {
	cases := map[string]domain.PaymentStatus{
		"succeeded":       domain.StatusRefunded,
		"pending":         domain.StatusPending,
		"requires_action": domain.StatusPending,
		"failed":          domain.StatusFailed,
		"canceled":        domain.StatusFailed,
	}
	for in, want := range cases {
		got, err := mapRefundStatus(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestMapRefundStatusUnknown(t *testing.T) {
	_, err := mapRefundStatus("some_future_status")
	require.Error(t, err)
}
