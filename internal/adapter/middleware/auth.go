package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/storage"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/security"
)

// CallerKey is where Protected stores the resolved caller in request locals.
const CallerKey = "caller"

// Protected resolves the bearer API key into the calling user (name, role,
// agency). The key is hashed before lookup; plain keys are never compared or
// stored.
func Protected(users *storage.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing API Key"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Header Format"})
		}

		user, err := users.ByKeyHash(c.Context(), security.HashKey(parts[1]))
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid API Key"})
		}

		c.Locals(CallerKey, user)
		return c.Next()
	}
}

// Caller returns the authenticated user stored by Protected.
func Caller(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(CallerKey).(*domain.User)
	return u
}
