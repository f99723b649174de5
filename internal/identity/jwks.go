package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSProvider verifies tokens of an external identity provider against
// its published key set.
type JWKSProvider struct {
	jwks   keyfunc.Keyfunc
	issuer string
}

// NewJWKSProvider fetches the key set at url and refreshes it in the
// background.  The first fetch may fail; the server still starts.
func NewJWKSProvider(url, issuer string, refresh time.Duration, logger *slog.Logger) (*JWKSProvider, error) {
	storage, err := jwkset.NewStorageFromHTTP(url, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: 10 * time.Second},
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           refresh,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("jwks refresh failed", slog.String("error", err.Error()), slog.String("url", url))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jwks storage: %w", err)
	}
	k, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("keyfunc: %w", err)
	}
	return &JWKSProvider{jwks: k, issuer: issuer}, nil
}

// NewJWKSProviderWithKeyfunc wraps an existing keyfunc, e.g. one built from
// static JSON.
func NewJWKSProviderWithKeyfunc(kf keyfunc.Keyfunc, issuer string) *JWKSProvider {
	return &JWKSProvider{jwks: kf, issuer: issuer}
}

func (p *JWKSProvider) Verify(ctx context.Context, raw string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	claims := &tokenClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, p.jwks.KeyfuncCtx(ctx), opts...); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims.identity()
}
