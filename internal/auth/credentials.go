package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-gate/internal/domain"
	"github.com/spec-kit/auth-gate/internal/repository"
)

// CredentialVerifier decides whether presented credentials are acceptable and,
// if so, which principal they identify. A rejection is ok=false with a nil error;
// err is reserved for backend failures.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds domain.Credentials) (principal string, ok bool, err error)
}

// StaticVerifier accepts a single configured password, optionally bound to a
// single username. The password is held only as a bcrypt hash.
type StaticVerifier struct {
	username string
	hash     string
}

// NewStaticVerifier builds a verifier from an existing bcrypt hash. An empty
// username accepts any non-empty username.
func NewStaticVerifier(username, passwordHash string) (*StaticVerifier, error) {
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("static verifier: invalid password hash: %w", err)
	}
	return &StaticVerifier{username: username, hash: passwordHash}, nil
}

// NewStaticVerifierFromPassword hashes the plaintext password once and discards it.
func NewStaticVerifierFromPassword(username, password string, cost int) (*StaticVerifier, error) {
	if password == "" {
		return nil, errors.New("static verifier: password is required")
	}
	hash, err := HashPassword(password, cost)
	if err != nil {
		return nil, fmt.Errorf("static verifier: hash password: %w", err)
	}
	return &StaticVerifier{username: username, hash: hash}, nil
}

// Verify implements CredentialVerifier.
func (v *StaticVerifier) Verify(_ context.Context, creds domain.Credentials) (string, bool, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", false, nil
	}
	if err := ComparePassword(v.hash, creds.Password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", false, nil
		}
		return "", false, err
	}
	if v.username != "" && creds.Username != v.username {
		return "", false, nil
	}
	return creds.Username, true, nil
}

// RepositoryVerifier checks credentials against stored bcrypt hashes.
type RepositoryVerifier struct {
	credentials repository.CredentialRepository
}

// NewRepositoryVerifier constructs a store-backed verifier.
func NewRepositoryVerifier(credentials repository.CredentialRepository) *RepositoryVerifier {
	return &RepositoryVerifier{credentials: credentials}
}

// Verify implements CredentialVerifier.
func (v *RepositoryVerifier) Verify(ctx context.Context, creds domain.Credentials) (string, bool, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", false, nil
	}
	stored, err := v.credentials.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup credential: %w", err)
	}
	if stored.Disabled {
		return "", false, nil
	}
	if err := ComparePassword(stored.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", false, nil
		}
		return "", false, err
	}
	return stored.Username, true, nil
}
