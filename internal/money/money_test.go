package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"100", "100.00", true},
		{"100.0", "100.00", true},
		{" 40.25 ", "40.25", true},
		{"0.01", "0.01", true},
		{"1e3", "1000.00", true},
		{"-5", "-5.00", true},
		{"", "", false},
		{"abc", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
		{"1.2.3", "", false},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if !tc.ok {
			require.Error(t, err, tc.in)
			require.True(t, errors.Is(err, ErrMalformedAmount), tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.out, got.StringFixed(2), tc.in)
	}
}

func TestParseNonNegativeRejectsNegative(t *testing.T) {
	_, err := ParseNonNegative("-0.01")
	require.ErrorIs(t, err, ErrMalformedAmount)

	d, err := ParseNonNegative("0")
	require.NoError(t, err)
	require.True(t, d.IsZero())
}

func TestRoundCentsTiesAwayFromZero(t *testing.T) {
	require.Equal(t, "1.01", RoundCents(decimal.RequireFromString("1.005")).StringFixed(2))
	require.Equal(t, "-1.01", RoundCents(decimal.RequireFromString("-1.005")).StringFixed(2))
	require.Equal(t, "2.34", RoundCents(decimal.RequireFromString("2.344")).StringFixed(2))
}
