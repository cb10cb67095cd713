package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fin-sync/payments-backend/internal/domain"
)

func TestCanTransitionToValidEdges(t *testing.T) {
	require.True(t, domain.StatusPending.CanTransitionTo(domain.StatusSucceeded))
	require.True(t, domain.StatusPending.CanTransitionTo(domain.StatusFailed))
	require.True(t, domain.StatusPending.CanTransitionTo(domain.StatusRefunded))
}

func TestCanTransitionToRejectsEverythingElse(t *testing.T) {
	all := []domain.PaymentStatus{domain.StatusPending, domain.StatusSucceeded, domain.StatusFailed, domain.StatusRefunded}

	allowed := map[[2]domain.PaymentStatus]bool{
		{domain.StatusPending, domain.StatusSucceeded}: true,
		{domain.StatusPending, domain.StatusFailed}:    true,
		{domain.StatusPending, domain.StatusRefunded}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]domain.PaymentStatus{from, to}]
			got := from.CanTransitionTo(to)
			require.Equal(t, want, got, "from=%s to=%s", from, to)
		}
	}
}

func TestNoSelfLoops(t *testing.T) {
	for _, s := range []domain.PaymentStatus{domain.StatusPending, domain.StatusSucceeded, domain.StatusFailed, domain.StatusRefunded} {
		require.False(t, s.CanTransitionTo(s), "status %s must not self-transition", s)
	}
}

func TestTerminalStatusesNeverTransition(t *testing.T) {
	terminal := []domain.PaymentStatus{domain.StatusSucceeded, domain.StatusFailed, domain.StatusRefunded}
	all := []domain.PaymentStatus{domain.StatusPending, domain.StatusSucceeded, domain.StatusFailed, domain.StatusRefunded}

	for _, term := range terminal {
		require.True(t, term.IsTerminal())
		for _, to := range all {
			require.False(t, term.CanTransitionTo(to), "%s -> %s must be disallowed", term, to)
		}
	}
}

func TestPaymentStatusRoundTrip(t *testing.T) {
	for _, s := range []domain.PaymentStatus{domain.StatusPending, domain.StatusSucceeded, domain.StatusFailed, domain.StatusRefunded} {
		parsed, err := domain.ParsePaymentStatus(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
}

func TestParsePaymentStatusUnknown(t *testing.T) {
	_, err := domain.ParsePaymentStatus("cancelled")
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestPaymentDirectionRoundTrip(t *testing.T) {
	for _, d := range []domain.PaymentDirection{domain.DirectionInbound, domain.DirectionOutbound} {
		parsed, err := domain.ParsePaymentDirection(d.String())
		require.NoError(t, err)
		require.Equal(t, d, parsed)
	}
}

func TestParsePaymentDirectionUnknown(t *testing.T) {
	_, err := domain.ParsePaymentDirection("lateral")
	require.Error(t, err)
}
