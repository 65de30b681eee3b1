// tokenclaims/tokenclaims.go
// Package tokenclaims reads the registered claims of an access token for display.
// Signatures are not verified; the backend remains the only authority on token validity.
package tokenclaims

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for tokens that are not parseable JWTs (opaque tokens).
var ErrNotJWT = errors.New("token is not a JWT")

// Claims are the registered claims of interest to the CLI.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carries an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// ExpiresIn returns the time left until expiry, negative once expired, and zero when there is no exp claim.
func (c Claims) ExpiresIn(now time.Time) time.Duration {
	if !c.HasExpiry() {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Expired reports whether the token has an exp claim in the past.
func (c Claims) Expired(now time.Time) bool {
	return c.HasExpiry() && !now.Before(c.ExpiresAt)
}

// Inspect parses token without verifying its signature.
func Inspect(token string) (Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &registered); err != nil {
		return Claims{}, errors.Join(ErrNotJWT, err)
	}

	claims := Claims{
		Subject: registered.Subject,
		Issuer:  registered.Issuer,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
