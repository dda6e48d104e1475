package handler

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/storage"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

type ExchangeHandler struct {
	Repo *storage.ExchangeRepository
	Ops  *storage.OperationsRepository
}

// Purchase runs a head-office currency purchase and returns the derived
// figures an operator needs to reconcile the transaction.
func (h *ExchangeHandler) Purchase(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpPurchase)
	if err != nil {
		return fail(c, err)
	}

	var req storage.PurchaseParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if _, err := domain.ParseCurrency(string(req.Target)); err != nil {
		return fail(c, err)
	}
	req.UserName = caller.Name

	quote, err := h.Repo.Purchase(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("currency purchased",
		"target", req.Target, "source_amount", req.SourceAmount,
		"real_rate", quote.RealRate, "user", caller.Name)

	return c.JSON(fiber.Map{
		"status":                   "success",
		"gross_foreign_amount":     quote.GrossForeign,
		"total_expenses_foreign":   quote.ExpensesForeign,
		"available_foreign_amount": quote.AvailableForeign,
		"real_rate":                quote.RealRate,
	})
}

// Sale sells foreign currency to a client from the caller's agency account
// (or any named account the caller acts for).
func (h *ExchangeHandler) Sale(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpSale)
	if err != nil {
		return fail(c, err)
	}

	var req storage.SaleParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if _, err := domain.ParseCurrency(string(req.Currency)); err != nil {
		return fail(c, err)
	}
	if req.Owner == "" {
		req.Owner = caller.Agency
	}
	req.UserName = caller.Name

	commission, err := h.Repo.Sale(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("currency sold",
		"currency", req.Currency, "foreign_amount", req.ForeignAmount,
		"commission", commission, "owner", req.Owner, "user", caller.Name)

	return c.JSON(fiber.Map{"status": "success", "commission": commission})
}

// Cession transfers float between two accounts in the same currency.
func (h *ExchangeHandler) Cession(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpCession)
	if err != nil {
		return fail(c, err)
	}

	var req storage.CessionParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if _, err := domain.ParseCurrency(string(req.Currency)); err != nil {
		return fail(c, err)
	}
	req.UserName = caller.Name

	if err := h.Repo.Cession(c.Context(), req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "success", "commission": "0"})
}

type ReplenishRequest struct {
	Lines []domain.ReplenishmentLine `json:"lines"`
}

// Replenish distributes currency from head office to agencies, all-or-nothing.
func (h *ExchangeHandler) Replenish(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpReplenishment)
	if err != nil {
		return fail(c, err)
	}

	var req ReplenishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	if err := h.Repo.Replenish(c.Context(), req.Lines, caller.Name); err != nil {
		return fail(c, err)
	}

	slog.Info("replenishment applied", "legs", len(req.Lines), "user", caller.Name)
	return c.JSON(fiber.Map{"status": "success", "legs": len(req.Lines)})
}

// ListOperations returns the most recent audit entries, optionally filtered
// by acting agency.
func (h *ExchangeHandler) ListOperations(c *fiber.Ctx) error {
	if _, err := requireRole(c, domain.OpListOperations); err != nil {
		return fail(c, err)
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fail(c, domain.Errorf(domain.ErrInvalidAmount, "limit must be a positive integer"))
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	ops, err := h.Ops.List(c.Context(), c.Query("owner"), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"operations": ops})
}

// CommissionTotal aggregates the commission generated, optionally per agency.
func (h *ExchangeHandler) CommissionTotal(c *fiber.Ctx) error {
	if _, err := requireRole(c, domain.OpListOperations); err != nil {
		return fail(c, err)
	}
	total, err := h.Ops.CommissionTotal(c.Context(), c.Query("owner"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"commission_total": total})
}
