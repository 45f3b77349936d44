package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"5", 5_000_000_000},
		{"0.25", 250_000_000},
		{"1.000000001", 1_000_000_001},
		{"0.000000001", 1},
		{".5", 500_000_000},
		{"10.", 10_000_000_000},
		{" 3 ", 3_000_000_000},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	tests := []string{
		"", ".", "abc", "-1", "+1", "1.0000000001", "1,5", "5 coins",
		"99999999999999999999",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAmount(in)
			var invalid *InvalidAmountError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{5_000_000_000, "5.0"},
		{250_000_000, "0.25"},
		{1_000_000_001, "1.000000001"},
		{0, "0.0"},
		{1, "0.000000001"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.in))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, units := range []uint64{0, 1, 999_999_999, 5_000_000_000, 123_456_789_012} {
		got, err := ParseAmount(FormatAmount(units))
		require.NoError(t, err)
		assert.Equal(t, units, got)
	}
}
