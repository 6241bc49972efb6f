package middleware

import (
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const accountLocal = "account"

// RequireAccount rejects requests whose session has no connected account.
func RequireAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetAccount(c) == "" {
			return response.Unauthorized(c, "Account not connected")
		}
		return c.Next()
	}
}

// GetAccount returns the connected account address ("" if none).
func GetAccount(c *fiber.Ctx) string {
	s, _ := c.Locals(accountLocal).(string)
	return s
}
