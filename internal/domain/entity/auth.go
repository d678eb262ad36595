package entity

import "time"

// TokenClaims is the identity payload embedded in a bearer token.
// Tokens are stateless: nothing about them is stored server-side.
type TokenClaims struct {
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the caller identity proven by a verified token.
// It lives in the request context and is discarded with the request.
type Principal struct {
	UserID int64
	Email  string
}

// PrincipalFromClaims derives the request principal from verified claims.
func PrincipalFromClaims(claims *TokenClaims) Principal {
	return Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
	}
}

// Owns reports whether the principal is the owner of the account with the given id.
func (p Principal) Owns(userID int64) bool {
	return p.UserID == userID
}
