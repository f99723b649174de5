package utils // package utils provides helper functions for token creation and hashing

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// Clients send it in the Authorization header when calling protected
// endpoints.
type AccessToken struct {
	Token string    `json:"token"`   // the serialized JWT string
	Exp   time.Time `json:"expires"` // the UTC expiration time
}

// TokenSubject is the identity encoded into an access token.
type TokenSubject struct {
	ID    string
	Email string
	Name  string
}

// NewAccessToken builds and signs an HS256 JWT for an identity.  The token
// carries sub, email, name, iat and exp.  Roles are deliberately absent: the
// access gate reads the role from the stored profile on every request.
func NewAccessToken(secret string, sub TokenSubject, ttl time.Duration, now time.Time) (AccessToken, error) {
	now = now.UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   sub.ID,
		"email": sub.Email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	if sub.Name != "" {
		claims["name"] = sub.Name
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
