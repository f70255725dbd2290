package session

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/env"
)

// LoggedInKey is the session flag set by a successful team login.
const LoggedInKey = "capIsLoggedIn"

// Gate is the shared team credential that guards the API
type Gate struct {
	Required     bool
	Username     string
	Password     string
	PasswordHash string
}

// LoadGate reads the gate from LOGIN_* variables.
func LoadGate() Gate {
	return Gate{
		Required:     env.GetBool("LOGIN_REQUIRED", false),
		Username:     env.GetEnv("LOGIN_USERNAME", "CAPS MONITORING TEAM"),
		Password:     env.GetEnv("LOGIN_PASSWORD", "CAPS"),
		PasswordHash: env.GetEnv("LOGIN_PASSWORD_HASH", ""),
	}
}

// Check reports whether the credentials match. A bcrypt hash, when
// configured, is used instead of the plaintext password.
func (g Gate) Check(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(g.Username)) != 1 {
		return false
	}
	if g.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(g.Password)) == 1
}

// Login marks the caller's session as logged in
func Login(c *fiber.Ctx) error {
	return SetSessionValue(c, LoggedInKey, "true")
}

// IsLoggedIn reports whether the caller's session passed the gate
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetSessionValue(c, LoggedInKey) == "true"
}
