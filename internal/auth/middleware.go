package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-gate/internal/events"
	apperrors "github.com/spec-kit/auth-gate/pkg/util"
)

// Gate guards protected routes behind a valid token. It only checks presence,
// signature and expiry; claims are not forwarded to the wrapped handler.
type Gate struct {
	codec   *TokenCodec
	extract TokenExtractor
	events  events.Dispatcher
}

// GateOption customizes a Gate.
type GateOption func(*Gate)

// WithTokenExtractor replaces the default query-then-bearer extractor.
func WithTokenExtractor(extractor TokenExtractor) GateOption {
	return func(g *Gate) {
		if extractor != nil {
			g.extract = extractor
		}
	}
}

// WithDispatcher publishes token rejections to the given dispatcher.
func WithDispatcher(d events.Dispatcher) GateOption {
	return func(g *Gate) {
		g.events = d
	}
}

// NewGate constructs the gate. Tokens are read from the "token" query parameter,
// falling back to an Authorization bearer header.
func NewGate(codec *TokenCodec, opts ...GateOption) *Gate {
	g := &Gate{
		codec:   codec,
		extract: FirstOf(QueryTokenExtractor("token"), BearerTokenExtractor),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handle enforces token presence and validity, then delegates to the next handler.
func (g *Gate) Handle(c *fiber.Ctx) error {
	token := g.extract(c)
	if token == "" {
		g.reject(c, apperrors.CodeMissingToken)
		return apperrors.NewMissingToken()
	}

	if _, err := g.codec.Decode(token); err != nil {
		g.reject(c, apperrors.CodeInvalidToken)
		return apperrors.NewInvalidToken(err)
	}

	return c.Next()
}

func (g *Gate) reject(c *fiber.Ctx, reason string) {
	if g.events == nil {
		return
	}
	_ = g.events.Publish(c.UserContext(), events.New(events.EventTokenRejected, "", events.TokenRejectedPayload{
		Reason: reason,
		Path:   c.Path(),
		Method: c.Method(),
	}))
}
