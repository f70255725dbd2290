package syncclient

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/afero"
)

// ErrInvalidCredentials is returned by Login when the gateway rejects the credentials.
var ErrInvalidCredentials = errors.New("Invalid credentials")

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login signs in with the shared team credential. A successful login is
// remembered on the device until Logout.
func (c *Client) Login(ctx context.Context, username, password string) error {
	err := c.do(ctx, http.MethodPost, "/login", credentials{Username: username, Password: password}, nil)
	var ae *apiError
	if errors.As(err, &ae) && ae.Status == http.StatusUnauthorized {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()
	if err := c.cache.fs.MkdirAll(c.cache.dir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(c.cache.fs, c.cache.path(loggedInFile), []byte("true"), 0o644)
}

// LoggedIn reports whether a login was remembered on the device.
func (c *Client) LoggedIn() bool {
	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()
	data, err := afero.ReadFile(c.cache.fs, c.cache.path(loggedInFile))
	return err == nil && string(data) == "true"
}

// Logout forgets the device login and ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	c.cache.mu.Lock()
	err := c.cache.fs.Remove(c.cache.path(loggedInFile))
	c.cache.mu.Unlock()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		log.Warnf("[SyncClient] server logout failed: %v", err)
	}
	return nil
}
