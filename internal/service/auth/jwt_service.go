package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/domain"
)

// MinSecretLength is the shortest HMAC signing secret accepted.
const MinSecretLength = 32

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	// Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, userID uuid.UUID, email string, role domain.Role) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken when
	// validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of a valid access token.
//
// Role and Email are informational. Authorization decisions re-read the
// user from the store, so a demoted or deleted user loses access even
// while an old token is still unexpired.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
