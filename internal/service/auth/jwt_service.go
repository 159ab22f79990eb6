// Package auth issues and validates the bearer tokens that protect the API.
// The trainer has a single owner, so a token only proves possession of the
// signing secret; its subject names the holder for logging.
package auth

import (
	"context"
	"time"
)

// DefaultSubject is the subject used when a token is issued without one.
const DefaultSubject = "owner"

// JWTService defines operations for managing JWT access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for subject that expires
	// after the configured lifetime.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// GenerateTokenWithLifetime creates a signed access token with an
	// explicit lifetime.
	GenerateTokenWithLifetime(ctx context.Context, subject string, lifetime time.Duration) (string, error)

	// ValidateToken validates the token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	TokenType string    `json:"type,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
