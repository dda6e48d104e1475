package domain

import "fmt"

type Currency string

const (
	XAF Currency = "XAF" // local reference currency
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// HeadOffice is the owner of the central cash accounts. Agencies use their own code.
const HeadOffice = "head-office"

var supportedCurrencies = map[Currency]bool{
	XAF: true,
	USD: true,
	EUR: true,
	GBP: true,
}

// ParseCurrency validates a currency code against the supported set.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(code)
	if !supportedCurrencies[c] {
		return "", Errorf(ErrInvalidCurrency, "currency %q is not supported", code)
	}
	return c, nil
}

// ParseOwner validates an account owner: head office or a non-empty agency code.
func ParseOwner(owner string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("owner is required: %w", ErrNotFound)
	}
	return owner, nil
}
