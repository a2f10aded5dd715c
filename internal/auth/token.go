package auth

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-gate/internal/domain"
)

// ErrInvalidSubject is returned by Encode for a subject that is not valid UTF-8.
var ErrInvalidSubject = errors.New("subject is not valid UTF-8")

// ErrInvalidToken is returned for any token that fails to decode: bad signature,
// malformed structure, unexpected algorithm, or missing/past expiry.
var ErrInvalidToken = errors.New("invalid token")

// TokenCodec signs and verifies HS256 tokens carrying a subject and an expiry.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used to evaluate expiry.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec builds a codec over the given secret.
func NewTokenCodec(secret []byte, opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{secret: append([]byte(nil), secret...), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode signs the claims. Expiry is carried with one-second precision.
func (c *TokenCodec) Encode(claims domain.Claims) (string, error) {
	if !utf8.ValidString(claims.Subject) {
		return "", ErrInvalidSubject
	}
	registered := jwt.RegisteredClaims{
		Subject:   claims.Subject,
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, registered).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token and returns its claims. Every failure wraps ErrInvalidToken.
func (c *TokenCodec) Decode(token string) (domain.Claims, error) {
	var registered jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &registered, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return domain.Claims{}, ErrInvalidToken
	}
	return domain.Claims{
		Subject:   registered.Subject,
		ExpiresAt: registered.ExpiresAt.Time.UTC(),
	}, nil
}
