package storage

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

// opRow is what one engine invocation appends to the exchange_operations log.
type opRow struct {
	Kind            domain.OperationKind
	Currency        *domain.Currency
	Amount          decimal.Decimal
	CounterCurrency *domain.Currency
	CounterAmount   decimal.Decimal
	Rate            decimal.Decimal
	Commission      decimal.Decimal
	Agency          string
	UserName        string
	Motif           *string
	Details         any
}

func insertOperationTx(ctx context.Context, tx pgx.Tx, op opRow) error {
	var details []byte
	if op.Details != nil {
		var err error
		details, err = json.Marshal(op.Details)
		if err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO exchange_operations
			(kind, currency, amount, counter_currency, counter_amount, rate, commission, agency, user_name, motif, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		op.Kind, op.Currency, op.Amount, op.CounterCurrency, op.CounterAmount,
		op.Rate, op.Commission, op.Agency, op.UserName, op.Motif, details)
	return err
}

// OperationsRepository reads the append-only audit log for reporting.
type OperationsRepository struct {
	db DB
}

func NewOperationsRepository(db DB) *OperationsRepository {
	return &OperationsRepository{db: db}
}

// List returns the most recent operations, optionally filtered by acting
// agency. limit caps the result size.
func (r *OperationsRepository) List(ctx context.Context, agency string, limit int) ([]domain.ExchangeOperation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, kind, currency, amount, counter_currency, counter_amount,
		       rate, commission, agency, user_name, motif, created_at
		FROM exchange_operations
		WHERE ($1 = '' OR agency = $1)
		ORDER BY created_at DESC
		LIMIT $2`, agency, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []domain.ExchangeOperation
	for rows.Next() {
		var op domain.ExchangeOperation
		err := rows.Scan(&op.ID, &op.Kind, &op.Currency, &op.Amount,
			&op.CounterCurrency, &op.CounterAmount, &op.Rate, &op.Commission,
			&op.Agency, &op.UserName, &op.Motif, &op.CreatedAt)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// CommissionTotal aggregates commissions generated, optionally per agency.
func (r *OperationsRepository) CommissionTotal(ctx context.Context, agency string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(commission), 0)
		FROM exchange_operations
		WHERE ($1 = '' OR agency = $1)`, agency).Scan(&total)
	return total, err
}
