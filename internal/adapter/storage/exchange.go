package storage

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

// ExchangeRepository runs the exchange operations. Every operation is one
// transaction: all legs apply or none do, and exactly one audit row is
// appended per invocation.
type ExchangeRepository struct {
	db DB
}

func NewExchangeRepository(db DB) *ExchangeRepository {
	return &ExchangeRepository{db: db}
}

type PurchaseParams struct {
	SourceAmount decimal.Decimal          `json:"source_amount"`
	Target       domain.Currency          `json:"target_currency"`
	QuotedRate   decimal.Decimal          `json:"quoted_rate"`
	Expenses     []domain.PurchaseExpense `json:"expenses"`
	UserName     string                   `json:"-"`
}

// Purchase buys foreign currency for the head office: debit the XAF spent,
// debit each deductible expense from its currency account, credit the
// available foreign amount and stamp the real rate on the target account.
func (r *ExchangeRepository) Purchase(ctx context.Context, p PurchaseParams) (domain.PurchaseQuote, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.PurchaseQuote{}, err
	}
	defer tx.Rollback(ctx)

	// Last applied rates, needed to convert expenses held in a third currency.
	rates := make(map[domain.Currency]decimal.Decimal)
	rows, err := tx.Query(ctx, `
		SELECT currency, last_rate FROM cash_accounts WHERE owner = $1`, domain.HeadOffice)
	if err != nil {
		return domain.PurchaseQuote{}, err
	}
	for rows.Next() {
		var c domain.Currency
		var rate decimal.Decimal
		if err := rows.Scan(&c, &rate); err != nil {
			rows.Close()
			return domain.PurchaseQuote{}, err
		}
		rates[c] = rate
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.PurchaseQuote{}, err
	}

	quote, err := domain.QuotePurchase(p.SourceAmount, p.Target, p.QuotedRate, p.Expenses, rates)
	if err != nil {
		return domain.PurchaseQuote{}, err
	}

	if err := debitTx(ctx, tx, domain.HeadOffice, domain.XAF, p.SourceAmount); err != nil {
		return domain.PurchaseQuote{}, err
	}
	for _, e := range p.Expenses {
		if !e.Amount.IsPositive() {
			continue
		}
		if err := debitTx(ctx, tx, domain.HeadOffice, e.Currency, e.Amount); err != nil {
			return domain.PurchaseQuote{}, err
		}
	}
	if err := creditTx(ctx, tx, domain.HeadOffice, p.Target, quote.AvailableForeign); err != nil {
		return domain.PurchaseQuote{}, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE cash_accounts SET last_rate = $3, updated_at = now()
		WHERE owner = $1 AND currency = $2`, domain.HeadOffice, p.Target, quote.RealRate)
	if err != nil {
		return domain.PurchaseQuote{}, err
	}

	src := domain.XAF
	err = insertOperationTx(ctx, tx, opRow{
		Kind:            domain.OpPurchase,
		Currency:        &p.Target,
		Amount:          quote.AvailableForeign,
		CounterCurrency: &src,
		CounterAmount:   p.SourceAmount.Round(2),
		Rate:            quote.RealRate,
		Agency:          domain.HeadOffice,
		UserName:        p.UserName,
		Details:         p.Expenses,
	})
	if err != nil {
		return domain.PurchaseQuote{}, err
	}
	return quote, tx.Commit(ctx)
}

type SaleParams struct {
	Owner         string          `json:"owner"`
	Currency      domain.Currency `json:"currency"`
	ForeignAmount decimal.Decimal `json:"foreign_amount"`
	DayRate       decimal.Decimal `json:"day_rate"`
	ReceivedLocal decimal.Decimal `json:"received_local"`
	UserName      string          `json:"-"`
}

// Sale sells foreign currency to a client: debit the foreign amount from the
// acting account, credit the XAF received, and book the commission against
// the last applied purchase rate for that currency.
func (r *ExchangeRepository) Sale(ctx context.Context, p SaleParams) (decimal.Decimal, error) {
	if !p.ForeignAmount.IsPositive() || !p.ReceivedLocal.IsPositive() || !p.DayRate.IsPositive() {
		return decimal.Zero, domain.Errorf(domain.ErrInvalidAmount, "sale amounts and rate must be positive")
	}
	if p.Currency == domain.XAF {
		return decimal.Zero, domain.Errorf(domain.ErrInvalidCurrency, "sale currency must be foreign")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	// Purchases only happen at head office, so its last rate is the cost basis.
	// Before any purchase has been recorded, the day rate serves as reference.
	ref, err := headOfficeRate(ctx, tx, p.Currency)
	if err != nil {
		return decimal.Zero, err
	}
	if !ref.IsPositive() {
		ref = p.DayRate
	}

	if err := debitTx(ctx, tx, p.Owner, p.Currency, p.ForeignAmount); err != nil {
		return decimal.Zero, err
	}
	if err := creditTx(ctx, tx, p.Owner, domain.XAF, p.ReceivedLocal); err != nil {
		return decimal.Zero, err
	}

	commission := domain.Commission(p.ReceivedLocal, p.ForeignAmount, ref)

	local := domain.XAF
	err = insertOperationTx(ctx, tx, opRow{
		Kind:            domain.OpSale,
		Currency:        &p.Currency,
		Amount:          p.ForeignAmount.Round(2),
		CounterCurrency: &local,
		CounterAmount:   p.ReceivedLocal.Round(2),
		Rate:            p.DayRate,
		Commission:      commission,
		Agency:          p.Owner,
		UserName:        p.UserName,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return commission, tx.Commit(ctx)
}

type CessionParams struct {
	FromOwner string          `json:"from_owner"`
	ToOwner   string          `json:"to_owner"`
	Currency  domain.Currency `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	UserName  string          `json:"-"`
}

// Cession is a same-currency internal transfer between two accounts. No rate
// conversion, commission always zero.
func (r *ExchangeRepository) Cession(ctx context.Context, p CessionParams) error {
	if !p.Amount.IsPositive() {
		return domain.Errorf(domain.ErrInvalidAmount, "cession amount must be positive, got %s", p.Amount)
	}
	if p.FromOwner == p.ToOwner {
		return domain.Errorf(domain.ErrInvalidAmount, "cession source and target are the same account")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := debitTx(ctx, tx, p.FromOwner, p.Currency, p.Amount); err != nil {
		return err
	}
	if err := creditTx(ctx, tx, p.ToOwner, p.Currency, p.Amount); err != nil {
		return err
	}

	err = insertOperationTx(ctx, tx, opRow{
		Kind:     domain.OpCession,
		Currency: &p.Currency,
		Amount:   p.Amount.Round(2),
		Agency:   p.FromOwner,
		UserName: p.UserName,
		Details:  map[string]string{"from": p.FromOwner, "to": p.ToOwner},
	})
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Replenish distributes currency from the head office to agencies as a single
// all-or-nothing batch. The head-office rows for every batch currency are
// locked and validated against the per-currency totals before any leg applies;
// a shortfall in any currency leaves every account untouched.
func (r *ExchangeRepository) Replenish(ctx context.Context, lines []domain.ReplenishmentLine, userName string) error {
	totals, err := domain.ReplenishmentTotals(lines)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Deterministic lock order across concurrent batches.
	currencies := make([]domain.Currency, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	for _, c := range currencies {
		if err := ensureAccount(ctx, tx, domain.HeadOffice, c); err != nil {
			return err
		}
		var balance decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT balance FROM cash_accounts
			WHERE owner = $1 AND currency = $2
			FOR UPDATE`, domain.HeadOffice, c).Scan(&balance)
		if err != nil {
			return err
		}
		if balance.LessThan(totals[c]) {
			return domain.Errorf(domain.ErrInsufficientFunds,
				"head office holds %s %s, batch needs %s", balance, c, totals[c])
		}
	}

	for _, l := range lines {
		if err := debitTx(ctx, tx, domain.HeadOffice, l.Currency, l.Amount); err != nil {
			return err
		}
		if err := creditTx(ctx, tx, l.Agency, l.Currency, l.Amount); err != nil {
			return err
		}
	}

	err = insertOperationTx(ctx, tx, opRow{
		Kind:     domain.OpReplenishment,
		Agency:   domain.HeadOffice,
		UserName: userName,
		Details:  lines,
	})
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
