package domain

type Role string

const (
	RoleCashier  Role = "cashier"
	RoleAuditor  Role = "auditor"
	RoleExecutor Role = "executor"
	RoleDirector Role = "director"
	RoleAdmin    Role = "admin"
)

// Operation names used by the capability table and the audit log.
type OperationKind string

const (
	OpPurchase       OperationKind = "purchase"
	OpSale           OperationKind = "sale"
	OpCession        OperationKind = "cession"
	OpReplenishment  OperationKind = "replenishment"
	OpManualAdjust   OperationKind = "manual-adjustment"
	OpViewBalances   OperationKind = "view-balances"
	OpListOperations OperationKind = "list-operations"

	OpCreateTransfer   OperationKind = "transfer-create"
	OpAuditTransfer    OperationKind = "transfer-audit"
	OpRejectTransfer   OperationKind = "transfer-reject"
	OpExecuteTransfer  OperationKind = "transfer-execute"
	OpCompleteTransfer OperationKind = "transfer-complete"
	OpPurgeTransfers   OperationKind = "transfer-purge"
)

// capabilities is the single place role gates live. Handlers consult it once
// per request instead of re-deriving role checks at each call site.
var capabilities = map[OperationKind]map[Role]bool{
	OpPurchase:      {RoleDirector: true, RoleAdmin: true},
	OpSale:          {RoleCashier: true, RoleDirector: true, RoleAdmin: true},
	OpCession:       {RoleCashier: true, RoleDirector: true, RoleAdmin: true},
	OpReplenishment: {RoleDirector: true, RoleAdmin: true},
	OpManualAdjust:  {RoleDirector: true, RoleAdmin: true},

	OpViewBalances:   {RoleCashier: true, RoleAuditor: true, RoleExecutor: true, RoleDirector: true, RoleAdmin: true},
	OpListOperations: {RoleCashier: true, RoleAuditor: true, RoleExecutor: true, RoleDirector: true, RoleAdmin: true},

	OpCreateTransfer:   {RoleCashier: true, RoleDirector: true, RoleAdmin: true},
	OpAuditTransfer:    {RoleAuditor: true},
	OpRejectTransfer:   {RoleAuditor: true},
	OpExecuteTransfer:  {RoleExecutor: true},
	OpCompleteTransfer: {RoleCashier: true, RoleDirector: true, RoleAdmin: true},
	OpPurgeTransfers:   {RoleDirector: true, RoleAdmin: true},
}

// Allowed reports whether a role may invoke the given operation.
func Allowed(r Role, op OperationKind) bool {
	return capabilities[op][r]
}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCashier, RoleAuditor, RoleExecutor, RoleDirector, RoleAdmin:
		return Role(s), nil
	}
	return "", Errorf(ErrUnauthorized, "unknown role %q", s)
}
