package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/middleware"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

// statusOf maps the stable domain error kinds onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidCurrency):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "error", err, "path", c.Path())
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// requireRole loads the caller and consults the capability table once, at the
// engine boundary.
func requireRole(c *fiber.Ctx, op domain.OperationKind) (*domain.User, error) {
	caller := middleware.Caller(c)
	if caller == nil {
		return nil, domain.Errorf(domain.ErrUnauthorized, "caller identity missing")
	}
	if !domain.Allowed(caller.Role, op) {
		return nil, domain.Errorf(domain.ErrUnauthorized, "role %s may not perform %s", caller.Role, op)
	}
	return caller, nil
}
