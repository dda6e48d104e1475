package domain

import "github.com/shopspring/decimal"

// ReplenishmentLine is one leg of a head-office-to-agency distribution.
type ReplenishmentLine struct {
	Agency   string          `json:"agency"`
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// MaxReplenishmentCurrencies caps how many distinct currencies one batch may move.
const MaxReplenishmentCurrencies = 4

// ReplenishmentTotals validates a batch and returns the total to debit from
// head office per currency. The caller checks every total against the
// head-office balance before applying any leg.
func ReplenishmentTotals(lines []ReplenishmentLine) (map[Currency]decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, Errorf(ErrInvalidAmount, "replenishment batch is empty")
	}
	totals := make(map[Currency]decimal.Decimal)
	for _, l := range lines {
		if l.Agency == "" || l.Agency == HeadOffice {
			return nil, Errorf(ErrNotFound, "replenishment target %q is not an agency", l.Agency)
		}
		if !supportedCurrencies[l.Currency] {
			return nil, Errorf(ErrInvalidCurrency, "currency %q is not supported", l.Currency)
		}
		if !l.Amount.IsPositive() {
			return nil, Errorf(ErrInvalidAmount, "amount for %s/%s must be positive, got %s", l.Agency, l.Currency, l.Amount)
		}
		totals[l.Currency] = totals[l.Currency].Add(l.Amount)
	}
	if len(totals) > MaxReplenishmentCurrencies {
		return nil, Errorf(ErrInvalidCurrency, "batch spans %d currencies, maximum is %d", len(totals), MaxReplenishmentCurrencies)
	}
	return totals, nil
}
