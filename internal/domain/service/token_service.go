package service

import (
	"errors"
	"time"

	"accounts/internal/domain/entity"
)

// TokenTTL is the fixed lifetime of every bearer token.
const TokenTTL = time.Hour

// ErrInvalidToken is returned by Verify for a bad signature, a malformed payload or an expired token.
var ErrInvalidToken = errors.New("invalid token")

// TokenService defines the interface for issuing and verifying bearer tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue creates a signed token for the user, expiring TokenTTL after issuance.
	Issue(userID int64, email string) (string, *entity.TokenClaims, error)

	// Verify checks the signature and expiry of a token and returns its claims.
	Verify(token string) (*entity.TokenClaims, error)
}
