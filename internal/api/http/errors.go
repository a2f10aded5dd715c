package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-gate/internal/config"
	apperrors "github.com/spec-kit/auth-gate/pkg/util"
)

// BasicChallenge is the challenge sent when login credentials are rejected.
const BasicChallenge = `Basic realm="login Required"`

// ErrorResponse is the rendered form of an error.
type ErrorResponse struct {
	Status  int
	Headers map[string]string
	Body    fiber.Map
}

// ErrorTranslator is the single place errors become HTTP responses.
type ErrorTranslator struct {
	realm config.RealmConfig
}

// NewErrorTranslator builds a translator for the given realm.
func NewErrorTranslator(realm config.RealmConfig) *ErrorTranslator {
	return &ErrorTranslator{realm: realm}
}

// Translate maps err to a status, headers and JSON body.
func (t *ErrorTranslator) Translate(err error) ErrorResponse {
	authErr := toAuthError(err)
	status := authErr.HTTPStatus
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{Status: status, Headers: map[string]string{}}
	switch authErr.Kind {
	case apperrors.KindMissingToken, apperrors.KindInvalidToken:
		resp.Body = fiber.Map{"message": authErr.Description}
	case apperrors.KindInvalidCredentials:
		resp.Body = fiber.Map{"error": authErr.Code, "error_description": authErr.Description}
		resp.Headers[fiber.HeaderWWWAuthenticate] = BasicChallenge
	default:
		resp.Body = fiber.Map{"error": authErr.Code, "error_description": authErr.Description}
		if status == http.StatusUnauthorized {
			resp.Headers[fiber.HeaderWWWAuthenticate] = t.BearerChallenge(authErr.Code, authErr.Description)
		}
	}
	return resp
}

// BearerChallenge formats the WWW-Authenticate value for a 401 domain error.
// Values are inserted verbatim.
func (t *ErrorTranslator) BearerChallenge(code, description string) string {
	return fmt.Sprintf("Bearer realm='%s', error='%s', error_description='%s'", t.realm.Domain, code, description)
}

// Write renders err onto the response, discarding anything already written.
func (t *ErrorTranslator) Write(c *fiber.Ctx, err error) error {
	resp := t.Translate(err)
	c.Response().ResetBody()
	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	return c.Status(resp.Status).JSON(resp.Body)
}

// FiberErrorHandler adapts Write to fiber.Config.ErrorHandler.
func (t *ErrorTranslator) FiberErrorHandler(c *fiber.Ctx, err error) error {
	return t.Write(c, err)
}

func toAuthError(err error) *apperrors.AuthError {
	var authErr *apperrors.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewAuthError(fiberErr.Code, statusCode(fiberErr.Code), fiberErr.Message)
	}
	return apperrors.ToAuthError(err)
}

func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return apperrors.CodeInternal
	}
	return strings.ToLower(strings.ReplaceAll(text, " ", "_"))
}
