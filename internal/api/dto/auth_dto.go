package dto

// TokenResponse is returned by the login entry on success.
type TokenResponse struct {
	Token string `json:"token"`
}
