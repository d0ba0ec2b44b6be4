package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenTypeAccess is the only token type accepted by the API.
const TokenTypeAccess = "access"

// JWTService issues and validates learner bearer tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the learner.
	// Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, learnerID uuid.UUID) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType,
	// ErrInvalidSubject or ErrInvalidToken when validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of a learner token.
type Claims struct {
	// LearnerID is the learner the token was issued for; it equals Subject.
	LearnerID uuid.UUID `json:"lid,omitempty"`

	TokenType string    `json:"type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
