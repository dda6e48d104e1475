package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotePurchaseNoExpenses(t *testing.T) {
	quote, err := QuotePurchase(dec("10000000"), USD, dec("600"), nil, nil)
	require.NoError(t, err)

	assert.True(t, quote.GrossForeign.Equal(dec("16666.67")), "gross = %s", quote.GrossForeign)
	assert.True(t, quote.AvailableForeign.Equal(dec("16666.67")), "available = %s", quote.AvailableForeign)
	assert.True(t, quote.ExpensesForeign.IsZero(), "expenses = %s", quote.ExpensesForeign)
	assert.True(t, quote.RealRate.Equal(dec("600")), "real rate = %s", quote.RealRate)
}

func TestQuotePurchaseLocalExpense(t *testing.T) {
	expenses := []PurchaseExpense{
		{Label: "transport", Amount: dec("600000"), Currency: XAF},
	}
	quote, err := QuotePurchase(dec("10000000"), USD, dec("600"), expenses, nil)
	require.NoError(t, err)

	assert.True(t, quote.ExpensesForeign.Equal(dec("1000")), "expenses = %s", quote.ExpensesForeign)
	assert.True(t, quote.AvailableForeign.Equal(dec("15666.67")), "available = %s", quote.AvailableForeign)
	assert.True(t, quote.RealRate.Equal(dec("638.30")), "real rate = %s", quote.RealRate)
}

func TestQuotePurchaseMixedExpenseCurrencies(t *testing.T) {
	expenses := []PurchaseExpense{
		{Label: "transport", Amount: dec("100"), Currency: USD},
		{Label: "note-exchange", Amount: dec("100"), Currency: EUR},
	}
	rates := map[Currency]decimal.Decimal{EUR: dec("650")}

	quote, err := QuotePurchase(dec("10000000"), USD, dec("600"), expenses, rates)
	require.NoError(t, err)

	// 100 USD as-is plus 100 EUR -> 65000 XAF -> 108.33 USD
	assert.True(t, quote.ExpensesForeign.Equal(dec("208.33")), "expenses = %s", quote.ExpensesForeign)
	assert.True(t, quote.AvailableForeign.Equal(dec("16458.33")), "available = %s", quote.AvailableForeign)
}

func TestQuotePurchaseErrors(t *testing.T) {
	t.Run("non-positive source", func(t *testing.T) {
		_, err := QuotePurchase(dec("0"), USD, dec("600"), nil, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
	t.Run("non-positive rate", func(t *testing.T) {
		_, err := QuotePurchase(dec("1000"), USD, dec("-1"), nil, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
	t.Run("local currency target", func(t *testing.T) {
		_, err := QuotePurchase(dec("1000"), XAF, dec("600"), nil, nil)
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
	t.Run("negative expense", func(t *testing.T) {
		expenses := []PurchaseExpense{{Label: "transport", Amount: dec("-5"), Currency: XAF}}
		_, err := QuotePurchase(dec("1000"), USD, dec("600"), expenses, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
	t.Run("expense currency without a known rate", func(t *testing.T) {
		expenses := []PurchaseExpense{{Label: "local-market", Amount: dec("10"), Currency: GBP}}
		_, err := QuotePurchase(dec("1000000"), USD, dec("600"), expenses, nil)
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
	t.Run("expenses consume whole purchase", func(t *testing.T) {
		expenses := []PurchaseExpense{{Label: "transport", Amount: dec("2000000"), Currency: XAF}}
		_, err := QuotePurchase(dec("1000000"), USD, dec("600"), expenses, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}
