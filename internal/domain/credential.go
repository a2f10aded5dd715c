package domain

import "time"

// Credential is a stored login record used by store-backed verifiers.
type Credential struct {
	ID           string
	Username     string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
