package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/storage"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

type LedgerHandler struct {
	Cash   *storage.CashRepository
	Notify *storage.NotificationQueue
}

// GetBalances returns one balance + last rate + last manual motif per currency
// held by the owner.
func (h *LedgerHandler) GetBalances(c *fiber.Ctx) error {
	if _, err := requireRole(c, domain.OpViewBalances); err != nil {
		return fail(c, err)
	}
	owner, err := domain.ParseOwner(c.Params("owner"))
	if err != nil {
		return fail(c, err)
	}
	accounts, err := h.Cash.GetBalances(c.Context(), owner)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"owner": owner, "balances": accounts})
}

type SetBalanceRequest struct {
	Owner    string          `json:"owner"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Reason   string          `json:"reason"`
}

// SetBalance is the privileged manual override path.
func (h *LedgerHandler) SetBalance(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpManualAdjust)
	if err != nil {
		return fail(c, err)
	}

	var req SetBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Reason == "" {
		return fail(c, domain.Errorf(domain.ErrInvalidAmount, "a reason is required for manual adjustments"))
	}
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return fail(c, err)
	}
	owner, err := domain.ParseOwner(req.Owner)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Cash.SetBalance(c.Context(), owner, currency, req.Balance, req.Reason, caller.Name); err != nil {
		return fail(c, err)
	}

	slog.Info("balance manually adjusted", "owner", owner, "currency", currency, "actor", caller.Name)
	h.Notify.Publish(c.Context(), "ledger.adjusted", fiber.Map{
		"owner":    owner,
		"currency": currency,
		"balance":  req.Balance,
		"reason":   req.Reason,
		"actor":    caller.Name,
	})

	return c.JSON(fiber.Map{"status": "success"})
}
