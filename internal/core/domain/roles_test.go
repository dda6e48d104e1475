package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		role Role
		op   OperationKind
		want bool
	}{
		{RoleAuditor, OpAuditTransfer, true},
		{RoleCashier, OpAuditTransfer, false},
		{RoleAdmin, OpAuditTransfer, false},

		{RoleExecutor, OpExecuteTransfer, true},
		{RoleAuditor, OpExecuteTransfer, false},

		{RoleCashier, OpCreateTransfer, true},
		{RoleCashier, OpCompleteTransfer, true},
		{RoleExecutor, OpCreateTransfer, false},

		{RoleDirector, OpPurchase, true},
		{RoleCashier, OpPurchase, false},
		{RoleCashier, OpSale, true},

		{RoleAdmin, OpManualAdjust, true},
		{RoleCashier, OpManualAdjust, false},
		{RoleAuditor, OpPurgeTransfers, false},

		{RoleExecutor, OpViewBalances, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Allowed(tt.role, tt.op), "Allowed(%s, %s)", tt.role, tt.op)
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("auditor")
	require.NoError(t, err)
	assert.Equal(t, RoleAuditor, r)

	_, err = ParseRole("superuser")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestParseCurrency(t *testing.T) {
	for _, code := range []string{"XAF", "USD", "EUR", "GBP"} {
		c, err := ParseCurrency(code)
		require.NoError(t, err)
		assert.Equal(t, Currency(code), c)
	}

	_, err := ParseCurrency("JPY")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = ParseCurrency("usd")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}
