package domain

import "time"

// Claims is the payload carried by an issued token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Credentials is a username/password pair presented at the login entry.
type Credentials struct {
	Username string
	Password string
}
