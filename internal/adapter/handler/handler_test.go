package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/middleware"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
)

func TestFailMapsErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid amount", domain.Errorf(domain.ErrInvalidAmount, "amount must be positive"), fiber.StatusBadRequest},
		{"invalid currency", domain.Errorf(domain.ErrInvalidCurrency, "JPY not supported"), fiber.StatusBadRequest},
		{"unauthorized", domain.Errorf(domain.ErrUnauthorized, "wrong executor"), fiber.StatusForbidden},
		{"not found", domain.Errorf(domain.ErrNotFound, "no such request"), fiber.StatusNotFound},
		{"invalid transition", domain.Errorf(domain.ErrInvalidStateTransition, "already audited"), fiber.StatusConflict},
		{"insufficient funds", domain.Errorf(domain.ErrInsufficientFunds, "balance too low"), fiber.StatusUnprocessableEntity},
		{"unknown error hides detail", assert.AnError, fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/boom", func(c *fiber.Ctx) error {
				return fail(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Run("missing caller", func(t *testing.T) {
		app := fiber.New()
		app.Get("/gate", func(c *fiber.Ctx) error {
			if _, err := requireRole(c, domain.OpAuditTransfer); err != nil {
				return fail(c, err)
			}
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/gate", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("role not in capability table", func(t *testing.T) {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(middleware.CallerKey, &domain.User{Name: "jo", Role: domain.RoleCashier, Agency: "douala-1"})
			return c.Next()
		})
		app.Get("/gate", func(c *fiber.Ctx) error {
			if _, err := requireRole(c, domain.OpAuditTransfer); err != nil {
				return fail(c, err)
			}
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/gate", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("allowed role passes", func(t *testing.T) {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(middleware.CallerKey, &domain.User{Name: "ava", Role: domain.RoleAuditor, Agency: "head-office"})
			return c.Next()
		})
		app.Get("/gate", func(c *fiber.Ctx) error {
			caller, err := requireRole(c, domain.OpAuditTransfer)
			if err != nil {
				return fail(c, err)
			}
			return c.JSON(fiber.Map{"caller": caller.Name})
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/gate", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
