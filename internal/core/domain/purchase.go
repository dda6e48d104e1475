package domain

import "github.com/shopspring/decimal"

// PurchaseExpense is a deductible expense (délestage) subtracted from a
// currency purchase before the real rate is computed. The amount is debited
// from the head-office account holding Currency.
type PurchaseExpense struct {
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// PurchaseQuote holds the derived figures of a currency purchase. All amounts
// are in the purchased foreign currency except RealRate (XAF per unit).
type PurchaseQuote struct {
	GrossForeign     decimal.Decimal `json:"gross_foreign_amount"`
	ExpensesForeign  decimal.Decimal `json:"total_expenses_foreign"`
	AvailableForeign decimal.Decimal `json:"available_foreign_amount"`
	RealRate         decimal.Decimal `json:"real_rate"`
}

// QuotePurchase computes the figures of a head-office currency purchase.
//
// sourceAmount is the XAF spent, quotedRate the quoted buy rate (XAF per unit
// of target). Expenses in XAF convert to the target at the quoted rate;
// expenses already in the target count as-is; expenses in a third currency go
// through XAF using that currency's last applied rate from lastRates.
//
// AvailableForeign is rounded to 2dp before the real rate is derived from it,
// so the rate always reflects the amount actually credited to the ledger.
func QuotePurchase(sourceAmount decimal.Decimal, target Currency, quotedRate decimal.Decimal, expenses []PurchaseExpense, lastRates map[Currency]decimal.Decimal) (PurchaseQuote, error) {
	if !sourceAmount.IsPositive() {
		return PurchaseQuote{}, Errorf(ErrInvalidAmount, "source amount must be positive, got %s", sourceAmount)
	}
	if !quotedRate.IsPositive() {
		return PurchaseQuote{}, Errorf(ErrInvalidAmount, "quoted rate must be positive, got %s", quotedRate)
	}
	if target == XAF {
		return PurchaseQuote{}, Errorf(ErrInvalidCurrency, "purchase target must be a foreign currency")
	}

	gross := sourceAmount.Div(quotedRate)

	expForeign := decimal.Zero
	for _, e := range expenses {
		if e.Amount.IsZero() {
			continue
		}
		if e.Amount.IsNegative() {
			return PurchaseQuote{}, Errorf(ErrInvalidAmount, "expense %q must not be negative", e.Label)
		}
		switch e.Currency {
		case target:
			expForeign = expForeign.Add(e.Amount)
		case XAF:
			expForeign = expForeign.Add(e.Amount.Div(quotedRate))
		default:
			rate, ok := lastRates[e.Currency]
			if !ok || !rate.IsPositive() {
				return PurchaseQuote{}, Errorf(ErrInvalidCurrency, "no applied rate known for expense currency %s", e.Currency)
			}
			expForeign = expForeign.Add(e.Amount.Mul(rate).Div(quotedRate))
		}
	}

	available := gross.Sub(expForeign).Round(2)
	if !available.IsPositive() {
		return PurchaseQuote{}, Errorf(ErrInvalidAmount, "expenses consume the whole purchase (gross %s, expenses %s)", gross.Round(2), expForeign.Round(2))
	}

	return PurchaseQuote{
		GrossForeign:     gross.Round(2),
		ExpensesForeign:  expForeign.Round(2),
		AvailableForeign: available,
		RealRate:         sourceAmount.Div(available).Round(2),
	}, nil
}
