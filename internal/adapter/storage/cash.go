package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

// CashRepository owns the cash_accounts rows. Every mutation is a conditional
// single-statement update so two cashiers hitting the same account can never
// lose an update; debits are guarded by `balance >= amount` in SQL, not by a
// read-then-write pair.
type CashRepository struct {
	db DB
}

func NewCashRepository(db DB) *CashRepository {
	return &CashRepository{db: db}
}

// ensureAccount creates the (owner, currency) row if it does not exist yet,
// inside the caller's transaction so existence-check and first write cannot race.
func ensureAccount(ctx context.Context, tx pgx.Tx, owner string, currency domain.Currency) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO cash_accounts (owner, currency)
		VALUES ($1, $2)
		ON CONFLICT (owner, currency) DO NOTHING`, owner, currency)
	return err
}

func creditTx(ctx context.Context, tx pgx.Tx, owner string, currency domain.Currency, amount decimal.Decimal) error {
	if err := ensureAccount(ctx, tx, owner, currency); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		UPDATE cash_accounts
		SET balance = balance + $3, updated_at = now()
		WHERE owner = $1 AND currency = $2`, owner, currency, amount)
	return err
}

func debitTx(ctx context.Context, tx pgx.Tx, owner string, currency domain.Currency, amount decimal.Decimal) error {
	if err := ensureAccount(ctx, tx, owner, currency); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE cash_accounts
		SET balance = balance - $3, updated_at = now()
		WHERE owner = $1 AND currency = $2 AND balance >= $3`, owner, currency, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Errorf(domain.ErrInsufficientFunds, "account %s/%s cannot cover %s", owner, currency, amount)
	}
	return nil
}

// Credit increases a balance. Amount must be positive.
func (r *CashRepository) Credit(ctx context.Context, owner string, currency domain.Currency, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Errorf(domain.ErrInvalidAmount, "credit amount must be positive, got %s", amount)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := creditTx(ctx, tx, owner, currency, amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Debit decreases a balance, failing if the result would go negative.
func (r *CashRepository) Debit(ctx context.Context, owner string, currency domain.Currency, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Errorf(domain.ErrInvalidAmount, "debit amount must be positive, got %s", amount)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := debitTx(ctx, tx, owner, currency, amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Transfer moves amount between two owners in the same currency, all-or-nothing.
func (r *CashRepository) Transfer(ctx context.Context, fromOwner, toOwner string, currency domain.Currency, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Errorf(domain.ErrInvalidAmount, "transfer amount must be positive, got %s", amount)
	}
	if fromOwner == toOwner {
		return domain.Errorf(domain.ErrInvalidAmount, "transfer source and target are the same account")
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := debitTx(ctx, tx, fromOwner, currency, amount); err != nil {
		return err
	}
	if err := creditTx(ctx, tx, toOwner, currency, amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetBalance is the privileged manual override. It records a manual-adjustment
// operation in the same transaction.
func (r *CashRepository) SetBalance(ctx context.Context, owner string, currency domain.Currency, newBalance decimal.Decimal, reason, actor string) error {
	if newBalance.IsNegative() {
		return domain.Errorf(domain.ErrInvalidAmount, "balance may not be negative, got %s", newBalance)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := ensureAccount(ctx, tx, owner, currency); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE cash_accounts
		SET balance = $3, last_motif = $4, updated_at = now()
		WHERE owner = $1 AND currency = $2`, owner, currency, newBalance, reason)
	if err != nil {
		return err
	}

	err = insertOperationTx(ctx, tx, opRow{
		Kind:     domain.OpManualAdjust,
		Currency: &currency,
		Amount:   newBalance.Round(2),
		Agency:   owner,
		UserName: actor,
		Motif:    &reason,
	})
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetBalances returns one row per currency held by the owner. Snapshot read;
// it never observes a partially applied multi-leg write.
func (r *CashRepository) GetBalances(ctx context.Context, owner string) ([]domain.CashAccount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT owner, currency, balance, last_rate, last_motif, updated_at
		FROM cash_accounts
		WHERE owner = $1
		ORDER BY currency`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.CashAccount
	for rows.Next() {
		var a domain.CashAccount
		if err := rows.Scan(&a.Owner, &a.Currency, &a.Balance, &a.LastRate, &a.LastMotif, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// headOfficeRate reads the last applied purchase rate for a currency.
func headOfficeRate(ctx context.Context, tx pgx.Tx, currency domain.Currency) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT last_rate FROM cash_accounts
		WHERE owner = $1 AND currency = $2`, domain.HeadOffice, currency).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	return rate, err
}
