package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-gate/internal/domain"
)

// CredentialRepository provides read-only access to stored login credentials.
type CredentialRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Credential, error)
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) GetByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	const query = `
        SELECT id, username, password_hash, disabled, created_at, updated_at
        FROM credentials WHERE username=$1`

	var cred domain.Credential
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&cred.ID,
		&cred.Username,
		&cred.PasswordHash,
		&cred.Disabled,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}
