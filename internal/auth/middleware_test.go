package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-gate/internal/domain"
	"github.com/spec-kit/auth-gate/internal/events"
	apperrors "github.com/spec-kit/auth-gate/pkg/util"
)

type gateResult struct {
	status  int
	message string
	body    string
}

func newGateApp(gate *Gate, downstream fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var authErr *apperrors.AuthError
			if errors.As(err, &authErr) {
				return c.Status(authErr.HTTPStatus).JSON(fiber.Map{"message": authErr.Description})
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	app.Get("/private", gate.Handle, downstream)
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) gateResult {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	res := gateResult{status: resp.StatusCode, body: string(raw)}
	var payload map[string]string
	if json.Unmarshal(raw, &payload) == nil {
		res.message = payload["message"]
	}
	return res
}

func mintToken(t *testing.T, secret []byte, expiresAt time.Time) string {
	t.Helper()
	token, err := NewTokenCodec(secret).Encode(domain.Claims{Subject: "alice", ExpiresAt: expiresAt})
	require.NoError(t, err)
	return token
}

func TestGate_MissingToken(t *testing.T) {
	calls := 0
	app := newGateApp(NewGate(NewTokenCodec(testSecret)), func(c *fiber.Ctx) error {
		calls++
		return c.SendString("secret stuff")
	})

	res := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "Missing Token", res.message)
	assert.Zero(t, calls)
}

func TestGate_EmptyTokenParamIsMissing(t *testing.T) {
	app := newGateApp(NewGate(NewTokenCodec(testSecret)), func(c *fiber.Ctx) error {
		t.Error("downstream should not run")
		return nil
	})

	res := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private?token=", nil))

	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "Missing Token", res.message)
}

func TestGate_InvalidTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "other secret", token: mintToken(t, []byte("some-other-secret"), time.Now().Add(time.Hour))},
		{name: "expired", token: mintToken(t, testSecret, time.Now().Add(-time.Hour))},
		{name: "malformed", token: "abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			app := newGateApp(NewGate(NewTokenCodec(testSecret)), func(c *fiber.Ctx) error {
				calls++
				return nil
			})

			res := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private?token="+tt.token, nil))

			assert.Equal(t, http.StatusForbidden, res.status)
			assert.Equal(t, "Invalid token", res.message)
			assert.Zero(t, calls)
		})
	}
}

func TestGate_ValidTokenDelegatesOnce(t *testing.T) {
	calls := 0
	app := newGateApp(NewGate(NewTokenCodec(testSecret)), func(c *fiber.Ctx) error {
		calls++
		return c.Status(http.StatusAccepted).SendString("downstream body")
	})
	token := mintToken(t, testSecret, time.Now().Add(time.Hour))

	res := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private?token="+token, nil))

	assert.Equal(t, http.StatusAccepted, res.status)
	assert.Equal(t, "downstream body", res.body)
	assert.Equal(t, 1, calls)
}

func TestGate_DownstreamErrorReturnedUnchanged(t *testing.T) {
	domainErr := apperrors.NewAuthError(http.StatusUnauthorized, "insufficient_permission", "nope")
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	gate := NewGate(NewTokenCodec(testSecret))

	var got error
	app.Get("/private", func(c *fiber.Ctx) error {
		got = gate.Handle(c)
		return nil
	}, func(c *fiber.Ctx) error {
		return domainErr
	})

	token := mintToken(t, testSecret, time.Now().Add(time.Hour))
	_ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private?token="+token, nil))

	assert.Same(t, domainErr, got)
}

func TestGate_BearerHeaderFallback(t *testing.T) {
	calls := 0
	app := newGateApp(NewGate(NewTokenCodec(testSecret)), func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "bearer "+mintToken(t, testSecret, time.Now().Add(time.Hour)))

	res := doRequest(t, app, req)

	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, 1, calls)
}

func TestGate_CustomExtractor(t *testing.T) {
	gate := NewGate(NewTokenCodec(testSecret), WithTokenExtractor(HeaderTokenExtractor("X-Api-Token")))
	app := newGateApp(gate, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	token := mintToken(t, testSecret, time.Now().Add(time.Hour))

	res := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private?token="+token, nil))
	assert.Equal(t, http.StatusForbidden, res.status, "query param is ignored by a header-only extractor")

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-Api-Token", token)
	res = doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, res.status)
}

func TestGate_PublishesRejections(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var reasons []string
	dispatcher.Subscribe(events.EventTokenRejected, func(_ context.Context, e events.Event) error {
		reasons = append(reasons, e.Payload.(events.TokenRejectedPayload).Reason)
		return nil
	})

	app := newGateApp(NewGate(NewTokenCodec(testSecret), WithDispatcher(dispatcher)), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private", nil))
	doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private?token=bad", nil))
	doRequest(t, app, httptest.NewRequest(http.MethodGet, "/private?token="+mintToken(t, testSecret, time.Now().Add(time.Hour)), nil))

	assert.Equal(t, []string{apperrors.CodeMissingToken, apperrors.CodeInvalidToken}, reasons)
}

func TestFirstOf_PrefersEarlierExtractors(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	extract := FirstOf(QueryTokenExtractor("token"), BearerTokenExtractor)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(extract(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	res := doRequest(t, app, req)
	assert.Equal(t, "from-query", res.body)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	res = doRequest(t, app, req)
	assert.Empty(t, res.body)
}
