package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplenishmentTotals(t *testing.T) {
	lines := []ReplenishmentLine{
		{Agency: "douala-1", Currency: XAF, Amount: dec("1000000")},
		{Agency: "douala-2", Currency: XAF, Amount: dec("500000")},
		{Agency: "douala-1", Currency: USD, Amount: dec("2500")},
	}

	totals, err := ReplenishmentTotals(lines)
	require.NoError(t, err)

	assert.Len(t, totals, 2)
	assert.True(t, totals[XAF].Equal(dec("1500000")), "XAF total = %s", totals[XAF])
	assert.True(t, totals[USD].Equal(dec("2500")), "USD total = %s", totals[USD])
}

func TestReplenishmentTotalsErrors(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		_, err := ReplenishmentTotals(nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
	t.Run("non-positive amount", func(t *testing.T) {
		_, err := ReplenishmentTotals([]ReplenishmentLine{
			{Agency: "douala-1", Currency: USD, Amount: dec("0")},
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
	t.Run("unsupported currency", func(t *testing.T) {
		_, err := ReplenishmentTotals([]ReplenishmentLine{
			{Agency: "douala-1", Currency: "JPY", Amount: dec("100")},
		})
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
	t.Run("head office as target", func(t *testing.T) {
		_, err := ReplenishmentTotals([]ReplenishmentLine{
			{Agency: HeadOffice, Currency: USD, Amount: dec("100")},
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("missing agency", func(t *testing.T) {
		_, err := ReplenishmentTotals([]ReplenishmentLine{
			{Agency: "", Currency: USD, Amount: dec("100")},
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
