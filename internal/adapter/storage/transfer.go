package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

// TransferRepository drives the transfer-request workflow. Every transition is
// a status-guarded UPDATE (`WHERE status = <expected>`), so a request audited
// or executed twice fails with InvalidStateTransition instead of silently
// overwriting the first decision.
type TransferRepository struct {
	db        DB
	threshold decimal.Decimal
}

// NewTransferRepository builds the workflow repository. threshold is the
// minimum commission (XAF) below which an audited request is auto-rejected.
func NewTransferRepository(db DB, threshold decimal.Decimal) *TransferRepository {
	return &TransferRepository{db: db, threshold: threshold}
}

const transferColumns = `
	id, amount_received, currency, beneficiary, destination, status,
	real_foreign_amount, reference_rate, commission, executor_name, audited_by,
	executed_at, receipt_ref, comment, created_by, agency, created_at, updated_at`

func scanTransfer(row pgx.Row) (*domain.TransferRequest, error) {
	var t domain.TransferRequest
	err := row.Scan(&t.ID, &t.AmountReceived, &t.Currency, &t.Beneficiary,
		&t.Destination, &t.Status, &t.RealForeignAmount, &t.ReferenceRate,
		&t.Commission, &t.ExecutorName, &t.AuditedBy, &t.ExecutedAt,
		&t.ReceiptRef, &t.Comment, &t.CreatedBy, &t.Agency, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ErrNotFound, "transfer request not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type CreateTransferParams struct {
	AmountReceived decimal.Decimal `json:"amount_received"`
	Currency       domain.Currency `json:"currency"`
	Beneficiary    string          `json:"beneficiary"`
	Destination    *string         `json:"destination,omitempty"`
	CreatedBy      string          `json:"-"`
	Agency         string          `json:"-"`
}

// Create inserts a new pending request. Amount and currency are fixed here;
// commission stays unset until audit.
func (r *TransferRepository) Create(ctx context.Context, p CreateTransferParams) (*domain.TransferRequest, error) {
	if !p.AmountReceived.IsPositive() {
		return nil, domain.Errorf(domain.ErrInvalidAmount, "received amount must be positive, got %s", p.AmountReceived)
	}
	if p.Beneficiary == "" {
		return nil, domain.Errorf(domain.ErrInvalidAmount, "beneficiary is required")
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO transfer_requests (amount_received, currency, beneficiary, destination, created_by, agency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING`+transferColumns,
		p.AmountReceived.Round(2), p.Currency, p.Beneficiary, p.Destination, p.CreatedBy, p.Agency)
	return scanTransfer(row)
}

// Audit records the real foreign amount confirmed by the auditor, computes the
// commission once, and routes the request: commission at or above the
// threshold validates it and assigns the least-recently-assigned executor;
// anything below rejects it. Only pending requests may be audited.
func (r *TransferRepository) Audit(ctx context.Context, id uuid.UUID, realForeign, referenceRate decimal.Decimal, auditor string) (*domain.TransferRequest, error) {
	if !realForeign.IsPositive() || !referenceRate.IsPositive() {
		return nil, domain.Errorf(domain.ErrInvalidAmount, "real amount and reference rate must be positive")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var received decimal.Decimal
	var status domain.TransferStatus
	err = tx.QueryRow(ctx, `
		SELECT amount_received, status FROM transfer_requests
		WHERE id = $1
		FOR UPDATE`, id).Scan(&received, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ErrNotFound, "transfer request %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(status, domain.StatusValidated) {
		return nil, domain.Errorf(domain.ErrInvalidStateTransition, "request is %s, only pending requests can be audited", status)
	}

	commission := domain.Commission(received, realForeign, referenceRate)

	if commission.GreaterThanOrEqual(r.threshold) {
		executor, err := pickExecutorTx(ctx, tx)
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx, `
			UPDATE transfer_requests
			SET status = $2, real_foreign_amount = $3, reference_rate = $4,
			    commission = $5, executor_name = $6, audited_by = $7, updated_at = now()
			WHERE id = $1`,
			id, domain.StatusValidated, realForeign.Round(2), referenceRate, commission, executor.Name, auditor)
		if err != nil {
			return nil, err
		}
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE transfer_requests
			SET status = $2, real_foreign_amount = $3, reference_rate = $4,
			    commission = $5, audited_by = $6,
			    comment = 'commission below validation threshold', updated_at = now()
			WHERE id = $1`,
			id, domain.StatusRejected, realForeign.Round(2), referenceRate, commission, auditor)
		if err != nil {
			return nil, err
		}
	}

	t, err := scanTransfer(tx.QueryRow(ctx, `SELECT`+transferColumns+` FROM transfer_requests WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return t, tx.Commit(ctx)
}

// pickExecutorTx selects the active executor who was assigned least recently,
// ties broken by name. SKIP LOCKED keeps two concurrent audits from both
// stamping the same stale row.
func pickExecutorTx(ctx context.Context, tx pgx.Tx) (*domain.User, error) {
	var u domain.User
	err := tx.QueryRow(ctx, `
		SELECT id, name FROM users
		WHERE role = $1 AND active
		ORDER BY last_assigned_at ASC NULLS FIRST, name ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, domain.RoleExecutor).Scan(&u.ID, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ErrNotFound, "no active executor available for assignment")
	}
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `UPDATE users SET last_assigned_at = now() WHERE id = $1`, u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Reject is the auditor's explicit rejection with a reason, bypassing the
// commission rule. Pending requests only.
func (r *TransferRepository) Reject(ctx context.Context, id uuid.UUID, reason, auditor string) (*domain.TransferRequest, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE transfer_requests
		SET status = $2, comment = $3, audited_by = $4, updated_at = now()
		WHERE id = $1 AND status = $5
		RETURNING`+transferColumns,
		id, domain.StatusRejected, reason, auditor, domain.StatusPending)
	t, err := scanTransfer(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, r.transitionError(ctx, id, domain.StatusRejected)
	}
	return t, err
}

// Execute attaches the receipt and moves validated → executed. Only the
// assigned executor may call it.
func (r *TransferRepository) Execute(ctx context.Context, id uuid.UUID, caller, receiptRef string, comment *string) (*domain.TransferRequest, error) {
	if receiptRef == "" {
		return nil, domain.Errorf(domain.ErrInvalidAmount, "receipt reference is required")
	}
	row := r.db.QueryRow(ctx, `
		UPDATE transfer_requests
		SET status = $2, receipt_ref = $3, comment = COALESCE($4, comment),
		    executed_at = now(), updated_at = now()
		WHERE id = $1 AND status = $5 AND executor_name = $6
		RETURNING`+transferColumns,
		id, domain.StatusExecuted, receiptRef, comment, domain.StatusValidated, caller)
	t, err := scanTransfer(row)
	if !errors.Is(err, domain.ErrNotFound) {
		return t, err
	}

	// Zero rows: work out whether the request is missing, in the wrong state,
	// or assigned to someone else.
	var status domain.TransferStatus
	var executor *string
	lookupErr := r.db.QueryRow(ctx, `
		SELECT status, executor_name FROM transfer_requests WHERE id = $1`, id).Scan(&status, &executor)
	if errors.Is(lookupErr, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ErrNotFound, "transfer request %s not found", id)
	}
	if lookupErr != nil {
		return nil, lookupErr
	}
	if !domain.CanTransition(status, domain.StatusExecuted) {
		return nil, domain.Errorf(domain.ErrInvalidStateTransition, "request is %s, only validated requests can be executed", status)
	}
	return nil, domain.Errorf(domain.ErrUnauthorized, "request is assigned to another executor")
}

// Complete closes an executed request. Normally called by the original cashier.
func (r *TransferRepository) Complete(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE transfer_requests
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING`+transferColumns,
		id, domain.StatusCompleted, domain.StatusExecuted)
	t, err := scanTransfer(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, r.transitionError(ctx, id, domain.StatusCompleted)
	}
	return t, err
}

// transitionError turns a zero-row guarded update into NotFound or
// InvalidStateTransition depending on whether the request exists.
func (r *TransferRepository) transitionError(ctx context.Context, id uuid.UUID, to domain.TransferStatus) error {
	var status domain.TransferStatus
	err := r.db.QueryRow(ctx, `SELECT status FROM transfer_requests WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Errorf(domain.ErrNotFound, "transfer request %s not found", id)
	}
	if err != nil {
		return err
	}
	if domain.Terminal(status) {
		return domain.Errorf(domain.ErrInvalidStateTransition, "request is %s and closed", status)
	}
	return domain.Errorf(domain.ErrInvalidStateTransition, "request is %s, cannot move to %s", status, to)
}

// Get fetches one request.
func (r *TransferRepository) Get(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
	return scanTransfer(r.db.QueryRow(ctx, `SELECT`+transferColumns+` FROM transfer_requests WHERE id = $1`, id))
}

// List returns requests newest first, optionally filtered by agency and status.
func (r *TransferRepository) List(ctx context.Context, agency string, status domain.TransferStatus, limit int) ([]domain.TransferRequest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+transferColumns+`
		FROM transfer_requests
		WHERE ($1 = '' OR agency = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3`, agency, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TransferRequest
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Purge bulk-deletes requests created before the cutoff. Privileged.
func (r *TransferRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM transfer_requests WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
