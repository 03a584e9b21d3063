package auth

import "context"

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login checks the credentials and returns a signed access token.
	Login(ctx context.Context, email, password string) (string, error)
	// Verify validates an access token and returns the user id it was issued to.
	Verify(token string) (string, error)
}

const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "UNAUTHENTICATED"
)
