package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	StatusPending   TransferStatus = "PENDING"
	StatusValidated TransferStatus = "VALIDATED"
	StatusExecuted  TransferStatus = "EXECUTED"
	StatusCompleted TransferStatus = "COMPLETED"
	StatusRejected  TransferStatus = "REJECTED"
)

// transitions is the whole workflow: pending either advances down the accepted
// path or dies in rejected. Completed and rejected are terminal.
var transitions = map[TransferStatus][]TransferStatus{
	StatusPending:   {StatusValidated, StatusRejected},
	StatusValidated: {StatusExecuted},
	StatusExecuted:  {StatusCompleted},
}

// CanTransition reports whether a transfer request may move from one status to
// another.
func CanTransition(from, to TransferStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves the given status.
func Terminal(s TransferStatus) bool {
	return len(transitions[s]) == 0
}

// TransferRequest is a money-transfer approval record. It tracks approval
// status and commission bookkeeping only; it never moves cash itself.
//
// Commission is computed exactly once, when the auditor sets the real foreign
// amount, and never recomputed. ExecutorName is set if and only if the request
// advanced past pending on the accepted path.
type TransferRequest struct {
	ID                uuid.UUID        `json:"id"`
	AmountReceived    decimal.Decimal  `json:"amount_received"`
	Currency          Currency         `json:"currency"`
	Beneficiary       string           `json:"beneficiary"`
	Destination       *string          `json:"destination,omitempty"`
	Status            TransferStatus   `json:"status"`
	RealForeignAmount *decimal.Decimal `json:"real_foreign_amount,omitempty"`
	ReferenceRate     *decimal.Decimal `json:"reference_rate,omitempty"`
	Commission        *decimal.Decimal `json:"commission,omitempty"`
	ExecutorName      *string          `json:"executor_name,omitempty"`
	AuditedBy         *string          `json:"audited_by,omitempty"`
	ExecutedAt        *time.Time       `json:"executed_at,omitempty"`
	ReceiptRef        *string          `json:"receipt_ref,omitempty"`
	Comment           *string          `json:"comment,omitempty"`
	CreatedBy         string           `json:"created_by"`
	Agency            string           `json:"agency"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
