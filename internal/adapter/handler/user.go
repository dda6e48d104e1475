package handler

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/storage"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/security"
)

type UserHandler struct {
	Repo *storage.UserRepository
}

type CreateUserRequest struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Agency string `json:"agency"`
}

// Create provisions a user and returns their API key once. The route is open
// only while no users exist (first-boot); afterwards it requires an admin key.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	count, err := h.Repo.Count(c.Context())
	if err != nil {
		return fail(c, err)
	}
	if count > 0 {
		caller, err := h.resolveCaller(c)
		if err != nil {
			return fail(c, err)
		}
		if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleDirector {
			return fail(c, domain.Errorf(domain.ErrUnauthorized, "role %s may not create users", caller.Role))
		}
	}

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Name == "" || req.Agency == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name and agency are required"})
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return fail(c, err)
	}

	user, realKey, err := h.Repo.Create(c.Context(), req.Name, role, req.Agency)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("user provisioned", "name", user.Name, "role", user.Role, "agency", user.Agency)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"api_key": realKey,
		"warning": "Save this key now. It will not be shown again.",
	})
}

// resolveCaller does the bearer-key lookup for this one public route. Every
// other route gets the caller from the auth middleware.
func (h *UserHandler) resolveCaller(c *fiber.Ctx) (*domain.User, error) {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, domain.Errorf(domain.ErrUnauthorized, "missing or malformed API key")
	}
	return h.Repo.ByKeyHash(c.Context(), security.HashKey(parts[1]))
}
