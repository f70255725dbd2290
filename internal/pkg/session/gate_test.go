package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGateCheck(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		gate     Gate
		user     string
		password string
		want     bool
	}{
		{"plain match", Gate{Username: "CAPS MONITORING TEAM", Password: "CAPS"}, "CAPS MONITORING TEAM", "CAPS", true},
		{"wrong password", Gate{Username: "CAPS MONITORING TEAM", Password: "CAPS"}, "CAPS MONITORING TEAM", "caps", false},
		{"wrong user", Gate{Username: "CAPS MONITORING TEAM", Password: "CAPS"}, "someone", "CAPS", false},
		{"hash preferred", Gate{Username: "team", Password: "CAPS", PasswordHash: string(hash)}, "team", "s3cret", true},
		{"hash ignores plaintext", Gate{Username: "team", Password: "CAPS", PasswordHash: string(hash)}, "team", "CAPS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gate.Check(tt.user, tt.password))
		})
	}
}

func TestLoadGateDefaults(t *testing.T) {
	t.Setenv("LOGIN_REQUIRED", "")
	t.Setenv("LOGIN_USERNAME", "")
	t.Setenv("LOGIN_PASSWORD", "")
	g := LoadGate()
	assert.False(t, g.Required)
	assert.Equal(t, "CAPS MONITORING TEAM", g.Username)
	assert.Equal(t, "CAPS", g.Password)
}

func TestLoginPersistsInSession(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("APP_ENV", "dev")
	NewSessionStore()

	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error { return Login(c) })
	app.Get("/check", func(c *fiber.Ctx) error {
		if IsLoggedIn(c) {
			return c.SendString("yes")
		}
		return c.SendString("no")
	})
	app.Post("/logout", func(c *fiber.Ctx) error { return DestroySession(c) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/check", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "no", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "yes", string(body))
}
