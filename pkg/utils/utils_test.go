package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain number", "100", "100"},
		{"decimal", "19.99", "19.99"},
		{"currency symbol", "$19.99", "19.99"},
		{"currency suffix", "5000 AMD", "5000"},
		{"thousands separator", "1,250.50", "1250.50"},
		{"whitespace", "  42  ", "42"},
		{"empty string", "", "0"},
		{"garbage", "n/a", "0"},
		{"negative", "-5", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.input).String())
		})
	}
}

func TestNormalizeCoupon(t *testing.T) {
	assert.Equal(t, "summer20", NormalizeCoupon("  SUMMER20 "))
	assert.Equal(t, "", NormalizeCoupon("   "))
}

func TestRetry(t *testing.T) {
	attempts := 0
	err := Retry(3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhausted(t *testing.T) {
	wantErr := errors.New("permanent")
	err := Retry(2, time.Millisecond, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestRetryWithBackoff(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(3, time.Millisecond, 10*time.Millisecond, func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
