package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-gate/internal/domain"
)

var testSecret = []byte("test-secret-key-at-least-32-bytes-long")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	claims := domain.Claims{
		Subject:   "alice",
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}
	original := claims

	token, err := codec.Encode(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, claims.Subject, got.Subject)
	assert.True(t, claims.ExpiresAt.Equal(got.ExpiresAt), "expiry %v != %v", claims.ExpiresAt, got.ExpiresAt)
	assert.Equal(t, original, claims, "encode must not mutate its input")
}

func TestTokenCodec_EncodeIsDeterministic(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	claims := domain.Claims{Subject: "bob", ExpiresAt: time.Unix(4102444800, 0)}

	first, err := codec.Encode(claims)
	require.NoError(t, err)
	second, err := codec.Encode(claims)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTokenCodec_EncodeRejectsNonUTF8Subject(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, err := codec.Encode(domain.Claims{Subject: "al\xffice", ExpiresAt: time.Now().Add(time.Hour)})

	assert.ErrorIs(t, err, ErrInvalidSubject)
	assert.Empty(t, token)
}

func TestTokenCodec_DecodeFailures(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec(testSecret, WithClock(fixedClock(now)))

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(now.Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "wrong secret",
			token: sign(jwt.SigningMethodHS256, []byte("another-secret"), jwt.RegisteredClaims{Subject: "a", ExpiresAt: future}),
		},
		{
			name:  "expired",
			token: sign(jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "a", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}),
		},
		{
			name:  "expires exactly now",
			token: sign(jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "a", ExpiresAt: jwt.NewNumericDate(now)}),
		},
		{
			name:  "missing expiry",
			token: sign(jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "a"}),
		},
		{
			name:  "unexpected algorithm",
			token: sign(jwt.SigningMethodHS512, testSecret, jwt.RegisteredClaims{Subject: "a", ExpiresAt: future}),
		},
		{
			name:  "unsigned",
			token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.RegisteredClaims{Subject: "a", ExpiresAt: future}),
		},
		{
			name:  "malformed",
			token: "not.a.token",
		},
		{
			name:  "garbage",
			token: "garbage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenCodec_ExpiryEvaluatedAgainstClock(t *testing.T) {
	issuedAt := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	token, err := NewTokenCodec(testSecret).Encode(domain.Claims{Subject: "carol", ExpiresAt: issuedAt.Add(time.Hour)})
	require.NoError(t, err)

	_, err = NewTokenCodec(testSecret, WithClock(fixedClock(issuedAt.Add(59*time.Minute)))).Decode(token)
	assert.NoError(t, err)

	_, err = NewTokenCodec(testSecret, WithClock(fixedClock(issuedAt.Add(61*time.Minute)))).Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenCodec_CopiesSecret(t *testing.T) {
	secret := append([]byte(nil), testSecret...)
	codec := NewTokenCodec(secret)
	token, err := codec.Encode(domain.Claims{Subject: "dave", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	secret[0] ^= 0xff

	_, err = codec.Decode(token)
	assert.NoError(t, err)
}
