// Package identity verifies bearer tokens and, in local mode, manages the
// email/password credentials that tokens are issued for.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for any token or credential that does not
// check out.  Callers answer 401.
var ErrUnauthorized = errors.New("unauthorized")

// Claims is the verified identity carried by a token.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Claims, error)
}

var (
	_ Verifier = (*LocalProvider)(nil)
	_ Verifier = (*JWKSProvider)(nil)
)

// tokenClaims is the JWT payload understood by both providers.
type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (c *tokenClaims) identity() (Claims, error) {
	if c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return Claims{Subject: c.Subject, Email: c.Email, Name: c.Name}, nil
}
