//go:build unit

package inventory_test

import (
	"errors"
	"testing"
	"time"

	"reservation-engine/internal/domain/inventory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capacity(n int) *int { return &n }

func TestStock_Reserve(t *testing.T) {
	testCases := []struct {
		name      string
		stock     inventory.Stock
		quantity  int
		errIs     error
		available int
		expected  inventory.Stock
	}{
		{
			name:     "fits exactly",
			stock:    inventory.Stock{TotalCapacity: capacity(3), Sold: 1, Reserved: 1},
			quantity: 1,
			expected: inventory.Stock{TotalCapacity: capacity(3), Sold: 1, Reserved: 2},
		},
		{
			name:      "sold out",
			stock:     inventory.Stock{TotalCapacity: capacity(1), Reserved: 1},
			quantity:  1,
			errIs:     inventory.ErrInsufficientStock,
			available: 0,
		},
		{
			name:      "partial availability is rejected whole",
			stock:     inventory.Stock{TotalCapacity: capacity(5), Sold: 2},
			quantity:  4,
			errIs:     inventory.ErrInsufficientStock,
			available: 3,
		},
		{
			name:     "unlimited never runs out",
			stock:    inventory.Stock{Sold: 1_000_000},
			quantity: 50,
			expected: inventory.Stock{Sold: 1_000_000, Reserved: 50},
		},
		{
			name:     "zero quantity",
			stock:    inventory.Stock{TotalCapacity: capacity(5)},
			quantity: 0,
			errIs:    inventory.ErrInvalidQuantity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := tc.stock.Reserve(tc.quantity)

			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				var stockErr *inventory.InsufficientStockError
				if errors.As(err, &stockErr) {
					assert.Equal(t, tc.available, stockErr.Available)
					assert.Equal(t, tc.quantity, stockErr.Requested)
				}
				assert.Equal(t, tc.stock, actual, "stock must be unchanged on failure")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestStock_SellAndUnreserve(t *testing.T) {
	s := inventory.Stock{TotalCapacity: capacity(10), Reserved: 4}

	sold, err := s.Sell(3)
	require.NoError(t, err)
	assert.Equal(t, 3, sold.Sold)
	assert.Equal(t, 1, sold.Reserved)
	assert.Equal(t, 6, sold.Available().Count())

	freed, err := sold.Unreserve(1)
	require.NoError(t, err)
	assert.Equal(t, 0, freed.Reserved)
	assert.Equal(t, 7, freed.Available().Count())

	_, err = freed.Unreserve(1)
	assert.ErrorIs(t, err, inventory.ErrCounterUnderflow)

	refunded, err := freed.Refund(3)
	require.NoError(t, err)
	assert.Equal(t, 10, refunded.Available().Count())
}

func TestAvailability(t *testing.T) {
	assert.True(t, inventory.Unlimited().Covers(1<<30))
	assert.Equal(t, "unlimited", inventory.Unlimited().String())
	assert.False(t, inventory.Limited(2).Covers(3))
	assert.Equal(t, "2", inventory.Limited(2).String())
}

func TestToken_Transitions(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("confirm is idempotent", func(t *testing.T) {
		tok, err := inventory.NewToken(uuid.New(), 2, now)
		require.NoError(t, err)

		changed, err := tok.Confirm(now)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = tok.Confirm(now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, inventory.TokenSold, tok.State)
	})

	t.Run("release twice fails", func(t *testing.T) {
		tok, err := inventory.NewToken(uuid.New(), 1, now)
		require.NoError(t, err)

		require.NoError(t, tok.Release(now))
		assert.ErrorIs(t, tok.Release(now), inventory.ErrInvalidToken)
	})

	t.Run("release after confirm fails", func(t *testing.T) {
		tok, err := inventory.NewToken(uuid.New(), 1, now)
		require.NoError(t, err)

		_, err = tok.Confirm(now)
		require.NoError(t, err)
		assert.ErrorIs(t, tok.Release(now), inventory.ErrInvalidToken)
	})

	t.Run("refund only from sold", func(t *testing.T) {
		tok, err := inventory.NewToken(uuid.New(), 1, now)
		require.NoError(t, err)

		assert.ErrorIs(t, tok.Refund(now), inventory.ErrInvalidToken)
		_, err = tok.Confirm(now)
		require.NoError(t, err)
		require.NoError(t, tok.Refund(now))
		assert.Equal(t, inventory.TokenReleased, tok.State)
	})

	t.Run("confirm after release fails", func(t *testing.T) {
		tok, err := inventory.NewToken(uuid.New(), 1, now)
		require.NoError(t, err)

		require.NoError(t, tok.Release(now))
		_, err = tok.Confirm(now)
		assert.ErrorIs(t, err, inventory.ErrInvalidToken)
	})
}
