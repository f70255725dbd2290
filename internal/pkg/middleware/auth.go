package middleware

import (
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/session"
	"github.com/gofiber/fiber/v2"
)

// RequireGate rejects API calls from sessions that have not passed the team
// login. It lets everything through when the gate is not required.
func RequireGate(gate session.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !gate.Required || session.IsLoggedIn(c) {
			return c.Next()
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "login required",
		})
	}
}
