package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/storage"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

type TransferHandler struct {
	Repo   *storage.TransferRepository
	Notify *storage.NotificationQueue
}

func transferID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.Errorf(domain.ErrNotFound, "invalid transfer request id %q", c.Params("id"))
	}
	return id, nil
}

// Create opens a new transfer request in pending state.
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpCreateTransfer)
	if err != nil {
		return fail(c, err)
	}

	var req storage.CreateTransferParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if _, err := domain.ParseCurrency(string(req.Currency)); err != nil {
		return fail(c, err)
	}
	req.CreatedBy = caller.Name
	req.Agency = caller.Agency

	t, err := h.Repo.Create(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("transfer request created", "id", t.ID, "amount", t.AmountReceived, "agency", t.Agency)
	return c.Status(fiber.StatusCreated).JSON(t)
}

type AuditRequest struct {
	RealForeignAmount decimal.Decimal `json:"real_foreign_amount"`
	ReferenceRate     decimal.Decimal `json:"reference_rate"`
}

// Audit lets the auditor confirm the real foreign amount. The engine computes
// the commission and routes the request to validated (with an executor
// assigned) or rejected.
func (h *TransferHandler) Audit(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpAuditTransfer)
	if err != nil {
		return fail(c, err)
	}
	id, err := transferID(c)
	if err != nil {
		return fail(c, err)
	}

	var req AuditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	t, err := h.Repo.Audit(c.Context(), id, req.RealForeignAmount, req.ReferenceRate, caller.Name)
	if err != nil {
		return fail(c, err)
	}

	event := "transfer.rejected"
	if t.Status == domain.StatusValidated {
		event = "transfer.validated"
	}
	slog.Info("transfer request audited", "id", t.ID, "status", t.Status, "commission", t.Commission)
	h.Notify.Publish(c.Context(), event, t)

	return c.JSON(t)
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// Reject is the auditor's explicit rejection, bypassing the commission rule.
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpRejectTransfer)
	if err != nil {
		return fail(c, err)
	}
	id, err := transferID(c)
	if err != nil {
		return fail(c, err)
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Reason == "" {
		return fail(c, domain.Errorf(domain.ErrInvalidAmount, "a reason is required to reject"))
	}

	t, err := h.Repo.Reject(c.Context(), id, req.Reason, caller.Name)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("transfer request rejected", "id", t.ID, "auditor", caller.Name)
	h.Notify.Publish(c.Context(), "transfer.rejected", t)
	return c.JSON(t)
}

type ExecuteRequest struct {
	ReceiptRef string  `json:"receipt_ref"`
	Comment    *string `json:"comment,omitempty"`
}

// Execute lets the assigned executor attach the receipt and mark the transfer
// carried out.
func (h *TransferHandler) Execute(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpExecuteTransfer)
	if err != nil {
		return fail(c, err)
	}
	id, err := transferID(c)
	if err != nil {
		return fail(c, err)
	}

	var req ExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	t, err := h.Repo.Execute(c.Context(), id, caller.Name, req.ReceiptRef, req.Comment)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("transfer request executed", "id", t.ID, "executor", caller.Name, "receipt", req.ReceiptRef)
	h.Notify.Publish(c.Context(), "transfer.executed", t)
	return c.JSON(t)
}

// Complete closes an executed request.
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	if _, err := requireRole(c, domain.OpCompleteTransfer); err != nil {
		return fail(c, err)
	}
	id, err := transferID(c)
	if err != nil {
		return fail(c, err)
	}

	t, err := h.Repo.Complete(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("transfer request completed", "id", t.ID)
	h.Notify.Publish(c.Context(), "transfer.completed", t)
	return c.JSON(t)
}

// Get fetches one request.
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	if _, err := requireRole(c, domain.OpListOperations); err != nil {
		return fail(c, err)
	}
	id, err := transferID(c)
	if err != nil {
		return fail(c, err)
	}
	t, err := h.Repo.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}

// List returns requests, optionally filtered by agency and status.
func (h *TransferHandler) List(c *fiber.Ctx) error {
	if _, err := requireRole(c, domain.OpListOperations); err != nil {
		return fail(c, err)
	}
	out, err := h.Repo.List(c.Context(), c.Query("agency"), domain.TransferStatus(c.Query("status")), 200)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"transfers": out})
}

// Purge bulk-deletes requests created before the given RFC3339 cutoff.
func (h *TransferHandler) Purge(c *fiber.Ctx) error {
	caller, err := requireRole(c, domain.OpPurgeTransfers)
	if err != nil {
		return fail(c, err)
	}

	before, err := time.Parse(time.RFC3339, c.Query("before"))
	if err != nil {
		return fail(c, domain.Errorf(domain.ErrInvalidAmount, "before must be an RFC3339 timestamp"))
	}

	n, err := h.Repo.Purge(c.Context(), before)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("transfer requests purged", "count", n, "before", before, "actor", caller.Name)
	return c.JSON(fiber.Map{"status": "success", "purged": n})
}
