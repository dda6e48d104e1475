package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashAccount is one balance bucket: (owner, currency) where owner is the head
// office or an agency code. Created implicitly on first mutation, never deleted.
type CashAccount struct {
	Owner     string          `json:"owner"`
	Currency  Currency        `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	LastRate  decimal.Decimal `json:"last_rate"`
	LastMotif *string         `json:"last_motif,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExchangeOperation is an append-only audit record written once per engine
// invocation. Amount/Currency describe the primary leg; the counter pair
// describes the opposite leg when the operation converts between currencies.
type ExchangeOperation struct {
	ID              uuid.UUID       `json:"id"`
	Kind            OperationKind   `json:"kind"`
	Currency        *Currency       `json:"currency,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	CounterCurrency *Currency       `json:"counter_currency,omitempty"`
	CounterAmount   decimal.Decimal `json:"counter_amount"`
	Rate            decimal.Decimal `json:"rate"`
	Commission      decimal.Decimal `json:"commission"`
	Agency          string          `json:"agency"`
	UserName        string          `json:"user_name"`
	Motif           *string         `json:"motif,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// User is the projection of the identity/role collaborator the engines need:
// who is calling, with which role, from which agency.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Role           Role       `json:"role"`
	Agency         string     `json:"agency"`
	Active         bool       `json:"active"`
	LastAssignedAt *time.Time `json:"last_assigned_at,omitempty"`
}
