package storage

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

func TestReplenishShortfallAppliesNothing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewExchangeRepository(mock)

	lines := []domain.ReplenishmentLine{
		{Agency: "agency-1", Currency: domain.USD, Amount: dec("400")},
	}

	// The head-office balance is validated under lock before any leg applies.
	// A shortfall rolls back without a single balance update.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cash_accounts").
		WithArgs(domain.HeadOffice, domain.USD).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT balance FROM cash_accounts").
		WithArgs(domain.HeadOffice, domain.USD).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(dec("100")))
	mock.ExpectRollback()

	err := repo.Replenish(context.Background(), lines, "director")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplenishShortfallInSecondCurrencyAppliesNothing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewExchangeRepository(mock)

	lines := []domain.ReplenishmentLine{
		{Agency: "agency-1", Currency: domain.EUR, Amount: dec("300")},
		{Agency: "agency-2", Currency: domain.USD, Amount: dec("400")},
	}

	// EUR covers its total but USD does not: the whole batch fails before the
	// first EUR debit is issued.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cash_accounts").
		WithArgs(domain.HeadOffice, domain.EUR).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT balance FROM cash_accounts").
		WithArgs(domain.HeadOffice, domain.EUR).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(dec("300")))
	mock.ExpectExec("INSERT INTO cash_accounts").
		WithArgs(domain.HeadOffice, domain.USD).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT balance FROM cash_accounts").
		WithArgs(domain.HeadOffice, domain.USD).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(dec("100")))
	mock.ExpectRollback()

	err := repo.Replenish(context.Background(), lines, "director")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplenishAppliesEveryLegAndLogsOnce(t *testing.T) {
	mock := newMockPool(t)
	repo := NewExchangeRepository(mock)

	lines := []domain.ReplenishmentLine{
		{Agency: "agency-1", Currency: domain.USD, Amount: dec("300")},
		{Agency: "agency-2", Currency: domain.USD, Amount: dec("200")},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cash_accounts").
		WithArgs(domain.HeadOffice, domain.USD).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT balance FROM cash_accounts").
		WithArgs(domain.HeadOffice, domain.USD).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(dec("500")))

	mock.ExpectExec("INSERT INTO cash_accounts").
		WithArgs(domain.HeadOffice, domain.USD).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec(`balance - \$3`).
		WithArgs(domain.HeadOffice, domain.USD, dec("300")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO cash_accounts").
		WithArgs("agency-1", domain.USD).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`balance \+ \$3`).
		WithArgs("agency-1", domain.USD, dec("300")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectExec("INSERT INTO cash_accounts").
		WithArgs(domain.HeadOffice, domain.USD).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec(`balance - \$3`).
		WithArgs(domain.HeadOffice, domain.USD, dec("200")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO cash_accounts").
		WithArgs("agency-2", domain.USD).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`balance \+ \$3`).
		WithArgs("agency-2", domain.USD, dec("200")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectExec("INSERT INTO exchange_operations").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.Replenish(context.Background(), lines, "director")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
