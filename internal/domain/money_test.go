package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fin-sync/payments-backend/internal/domain"
)

func TestNewMoneyAmount(t *testing.T) {
	cases := []struct {
		name    string
		cents   int64
		wantErr bool
	}{
		{"zero is accepted", 0, false},
		{"positive accepted", 500, false},
		{"negative rejected", -1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewMoneyAmount(tc.cents)
			if tc.wantErr {
				require.Error(t, err)
				require.Equal(t, domain.KindValidation, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckedAddOverflow(t *testing.T) {
	a, err := domain.NewMoneyAmount(math.MaxInt64)
	require.NoError(t, err)
	b, err := domain.NewMoneyAmount(1)
	require.NoError(t, err)

	_, ok := a.CheckedAdd(b)
	require.False(t, ok, "checked_add must report overflow, never wrap")
}

func TestCheckedSubUnderflow(t *testing.T) {
	a, err := domain.NewMoneyAmount(5)
	require.NoError(t, err)
	b, err := domain.NewMoneyAmount(10)
	require.NoError(t, err)

	_, ok := a.CheckedSub(b)
	require.False(t, ok, "checked_sub must report underflow, never wrap")
}

func TestCheckedAddSubHappyPath(t *testing.T) {
	a, _ := domain.NewMoneyAmount(700)
	b, _ := domain.NewMoneyAmount(300)

	sum, ok := a.CheckedAdd(b)
	require.True(t, ok)
	require.Equal(t, int64(1000), sum.Cents())

	diff, ok := sum.CheckedSub(b)
	require.True(t, ok)
	require.Equal(t, int64(700), diff.Cents())
}

func TestCurrencyRoundTrip(t *testing.T) {
	for _, c := range []domain.Currency{domain.USD, domain.EUR, domain.GBP, domain.JPY} {
		parsed, err := domain.ParseCurrency(c.String())
		require.NoError(t, err)
		require.Equal(t, c, parsed)
	}
}

func TestParseCurrencyUnknown(t *testing.T) {
	_, err := domain.ParseCurrency("xyz")
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}
