package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/insurance-lead-desk/internal/repository"
	"github.com/iliyamo/insurance-lead-desk/internal/utils"
)

const minPasswordLen = 6

// LocalProvider issues and verifies HS256 tokens for credentials kept in
// the document store.
type LocalProvider struct {
	Credentials *repository.CredentialRepo
	Secret      string
	TTL         time.Duration
	Cost        int
	Now         func() time.Time
}

func NewLocalProvider(creds *repository.CredentialRepo, secret string, ttl time.Duration, cost int) *LocalProvider {
	return &LocalProvider{Credentials: creds, Secret: secret, TTL: ttl, Cost: cost, Now: time.Now}
}

// SignUp creates a credential and returns the new identity.
func (p *LocalProvider) SignUp(ctx context.Context, email, password, name string) (Claims, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Claims{}, repository.Validation("Please provide email and password")
	}
	if len(password) < minPasswordLen {
		return Claims{}, repository.Validation("Password should be at least 6 characters")
	}
	hash, err := utils.HashPassword(password, p.Cost)
	if err != nil {
		return Claims{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := p.Credentials.Create(ctx, email, hash)
	if err != nil {
		return Claims{}, err
	}
	return Claims{Subject: id, Email: email, Name: strings.TrimSpace(name)}, nil
}

// Forget removes the credential of subject, undoing a SignUp whose
// registration could not be completed.
func (p *LocalProvider) Forget(ctx context.Context, subject string) error {
	return p.Credentials.Delete(ctx, subject)
}

// SignIn checks email and password.  Unknown emails and wrong passwords are
// both ErrUnauthorized.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Claims, error) {
	cred, err := p.Credentials.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Claims{}, ErrUnauthorized
	}
	if err != nil {
		return Claims{}, err
	}
	if !utils.VerifyPassword(cred.PasswordHash, password) {
		return Claims{}, ErrUnauthorized
	}
	return Claims{Subject: cred.ID, Email: cred.Email}, nil
}

// IssueToken signs an access token for c.
func (p *LocalProvider) IssueToken(c Claims) (utils.AccessToken, error) {
	return utils.NewAccessToken(p.Secret, utils.TokenSubject{ID: c.Subject, Email: c.Email, Name: c.Name}, p.TTL, p.Now())
}

// Verify parses an HS256 token signed with the provider's secret.
func (p *LocalProvider) Verify(_ context.Context, raw string) (Claims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(p.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.Now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims.identity()
}
