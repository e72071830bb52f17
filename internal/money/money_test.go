package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := map[string]Money{
		"12.95":  1295,
		"550":    55000,
		" 90.0 ": 9000,
		"0.005":  1,
		"0":      0,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := Parse("")
	require.Error(t, err)
	_, err = Parse("twelve")
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "712.95", Format(71295))
	require.Equal(t, "0.00", Format(0))
	require.Equal(t, "5.00", Format(500))
	require.True(t, Decimal(1295).Equal(decimal.RequireFromString("12.95")))
}
