//go:build unit

package uow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoff(t *testing.T) {
	base := 10 * time.Millisecond

	tests := []struct {
		attempt int
		min     time.Duration
		max     time.Duration
	}{
		{attempt: 0, min: 10 * time.Millisecond, max: 12 * time.Millisecond},
		{attempt: 1, min: 20 * time.Millisecond, max: 24 * time.Millisecond},
		{attempt: 2, min: 40 * time.Millisecond, max: 48 * time.Millisecond},
	}

	for _, tt := range tests {
		for range 20 {
			got := calculateBackoff(tt.attempt, base)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.Less(t, got, tt.max)
		}
	}
}

func TestCryptoRandInt63n(t *testing.T) {
	assert.Equal(t, int64(0), cryptoRandInt63n(0))
	assert.Equal(t, int64(0), cryptoRandInt63n(-5))
	for range 50 {
		v := cryptoRandInt63n(7)
		assert.GreaterOrEqual(t, v, int64(0))
		assert.Less(t, v, int64(7))
	}
}
