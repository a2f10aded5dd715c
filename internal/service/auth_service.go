package service

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-gate/internal/auth"
	"github.com/spec-kit/auth-gate/internal/domain"
	"github.com/spec-kit/auth-gate/internal/events"
	"github.com/spec-kit/auth-gate/internal/repository"
	apperrors "github.com/spec-kit/auth-gate/pkg/util"
)

// TokenTTL is the lifetime of every issued token. There is no refresh.
const TokenTTL = time.Hour

// AuthService exchanges credentials for signed tokens.
type AuthService struct {
	codec       *auth.TokenCodec
	verifier    auth.CredentialVerifier
	attempts    repository.LoginAttemptRepository
	maxFailures int64
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
// Attempts and Dispatcher are optional.
type AuthDependencies struct {
	Codec           *auth.TokenCodec
	Verifier        auth.CredentialVerifier
	Attempts        repository.LoginAttemptRepository
	MaxFailedLogins int
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Clock           func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		codec:       deps.Codec,
		verifier:    deps.Verifier,
		attempts:    deps.Attempts,
		maxFailures: int64(deps.MaxFailedLogins),
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		now:         deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Login verifies the credentials and returns a token valid for TokenTTL.
// clientIP scopes the optional attempt throttle; it is ignored when the
// throttle is disabled.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials, clientIP string) (string, time.Time, error) {
	if creds.Username == "" || creds.Password == "" {
		s.publish(ctx, events.New(events.EventLoginFailed, creds.Username, events.LoginFailedPayload{Reason: "missing credentials"}))
		return "", time.Time{}, apperrors.NewInvalidCredentials()
	}
	// Subjects are signed as JSON strings; anything else would not round-trip.
	if !utf8.ValidString(creds.Username) {
		s.publish(ctx, events.New(events.EventLoginFailed, "", events.LoginFailedPayload{Reason: "malformed username"}))
		return "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	if !s.admit(ctx, creds.Username, clientIP) {
		s.publish(ctx, events.New(events.EventLoginFailed, creds.Username, events.LoginFailedPayload{Reason: "throttled"}))
		return "", time.Time{}, apperrors.NewTooManyAttempts()
	}

	principal, ok, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	if !ok {
		s.publish(ctx, events.New(events.EventLoginFailed, creds.Username, events.LoginFailedPayload{Reason: "rejected"}))
		return "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	s.resetAttempts(ctx, creds.Username, clientIP)

	claims := domain.Claims{Subject: principal, ExpiresAt: s.now().Add(TokenTTL)}
	token, err := s.codec.Encode(claims)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventLoginSucceeded, principal, events.LoginSucceededPayload{ExpiresAt: claims.ExpiresAt}))
	return token, claims.ExpiresAt, nil
}

// admit counts the attempt before the verifier runs, so concurrent guesses each
// observe a distinct count and at most maxFailures of them reach the verifier.
// It fails open: an unreachable attempt store never blocks logins.
func (s *AuthService) admit(ctx context.Context, username, clientIP string) bool {
	if s.attempts == nil || s.maxFailures <= 0 {
		return true
	}
	n, err := s.attempts.RecordAttempt(ctx, username, clientIP)
	if err != nil {
		s.logger.Warn("record login attempt", zap.Error(err))
		return true
	}
	return n <= s.maxFailures
}

func (s *AuthService) resetAttempts(ctx context.Context, username, clientIP string) {
	if s.attempts == nil || s.maxFailures <= 0 {
		return
	}
	if err := s.attempts.Reset(ctx, username, clientIP); err != nil {
		s.logger.Warn("reset login attempts", zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish auth event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
