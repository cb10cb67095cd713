package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fin-sync/payments-backend/internal/domain"
)

func TestNewExternalIdAcceptsKnownPrefixes(t *testing.T) {
	pi, err := domain.NewExternalId("pi_123")
	require.NoError(t, err)
	require.True(t, pi.IsPaymentIntent())
	require.Equal(t, domain.DirectionInbound, pi.Direction())

	re, err := domain.NewExternalId("re_456")
	require.NoError(t, err)
	require.True(t, re.IsRefund())
	require.Equal(t, domain.DirectionOutbound, re.Direction())
}

func TestNewExternalIdRejectsUnknownPrefix(t *testing.T) {
	_, err := domain.NewExternalId("ch_789")
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestNewEventIdValidation(t *testing.T) {
	_, err := domain.NewEventId("evt_1")
	require.NoError(t, err)

	_, err = domain.NewEventId("not_an_event")
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}
