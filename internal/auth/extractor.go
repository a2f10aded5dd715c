package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenExtractor pulls a raw token from the request. It returns "" when absent.
type TokenExtractor func(c *fiber.Ctx) string

// QueryTokenExtractor reads the token from the named query parameter.
func QueryTokenExtractor(param string) TokenExtractor {
	return func(c *fiber.Ctx) string {
		return strings.TrimSpace(c.Query(param))
	}
}

// BearerTokenExtractor reads the token from an "Authorization: Bearer" header.
func BearerTokenExtractor(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// HeaderTokenExtractor reads the token verbatim from a custom header.
func HeaderTokenExtractor(header string) TokenExtractor {
	return func(c *fiber.Ctx) string {
		return strings.TrimSpace(c.Get(header))
	}
}

// FirstOf tries each extractor in order and returns the first non-empty token.
func FirstOf(extractors ...TokenExtractor) TokenExtractor {
	return func(c *fiber.Ctx) string {
		for _, extract := range extractors {
			if tok := extract(c); tok != "" {
				return tok
			}
		}
		return ""
	}
}
