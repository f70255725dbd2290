package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/session"
)

// AuthController handles the shared team login
type AuthController struct {
	gate session.Gate
}

// NewAuthController creates the controller for the given gate
func NewAuthController(gate session.Gate) *AuthController {
	return &AuthController{gate: gate}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// HandleLogin checks the team credential and marks the session logged in
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid login body")
	}
	if !ac.gate.Check(req.Username, req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err := session.Login(c); err != nil {
		log.Errorf("[Session] login: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to start session")
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleLogout ends the session
func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := session.DestroySession(c); err != nil {
		log.Warnf("[Session] logout: %v", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleSession reports whether the caller may use the API
func (ac *AuthController) HandleSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"loginRequired": ac.gate.Required,
		"loggedIn":      !ac.gate.Required || session.IsLoggedIn(c),
	})
}
