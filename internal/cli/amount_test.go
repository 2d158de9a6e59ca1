package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		decimals int
		want     int64
		wantErr  bool
	}{
		{"10", 6, 10_000_000, false},
		{"12.5", 6, 12_500_000, false},
		{"0.000001", 6, 1, false},
		{" 3 ", 6, 3_000_000, false},
		{"15", 0, 15, false},
		{"0.0000001", 6, 0, true},
		{"1.5", 0, 0, true},
		{"0", 6, 0, true},
		{"-1", 6, 0, true},
		{"+1", 6, 0, true},
		{"1.", 6, 0, true},
		{".5", 6, 0, true},
		{"1.-5", 6, 0, true},
		{"abc", 6, 0, true},
		{"9223372036854775807", 6, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in, tt.decimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "10", FormatAmount(10_000_000, 6))
	assert.Equal(t, "12.5", FormatAmount(12_500_000, 6))
	assert.Equal(t, "0.000001", FormatAmount(1, 6))
	assert.Equal(t, "-2.25", FormatAmount(-2_250_000, 6))
	assert.Equal(t, "42", FormatAmount(42, 0))
}
