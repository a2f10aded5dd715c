package handlers

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-gate/internal/api/dto"
	"github.com/spec-kit/auth-gate/internal/domain"
	"github.com/spec-kit/auth-gate/internal/service"
)

// AuthHandler exposes the login entry.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles GET/POST /login with HTTP Basic credentials.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	creds, _ := basicCredentials(c.Get(fiber.HeaderAuthorization))

	token, _, err := h.auth.Login(c.UserContext(), creds, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{Token: token})
}

// basicCredentials parses an "Authorization: Basic" header value. Malformed or
// non-Basic values yield empty credentials.
func basicCredentials(header string) (domain.Credentials, bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return domain.Credentials{}, false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return domain.Credentials{}, false
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return domain.Credentials{}, false
	}
	return domain.Credentials{Username: username, Password: password}, true
}
