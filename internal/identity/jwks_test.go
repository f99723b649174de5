package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testKeyID  = "test-key"
	testIssuer = "https://id.example.test"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func jwkSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	set := map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": kid,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	data, _ := json.Marshal(set)
	return data
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKeyID
	raw, err := tok.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestJWKSVerify(t *testing.T) {
	key := generateKey(t)
	kf, err := keyfunc.NewJWKSetJSON(jwkSetJSON(&key.PublicKey, testKeyID))
	if err != nil {
		t.Fatalf("keyfunc: %v", err)
	}
	p := NewJWKSProviderWithKeyfunc(kf, testIssuer)

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":   "ext-1",
			"email": "asha@example.com",
			"iss":   testIssuer,
			"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	c, err := p.Verify(context.Background(), signRS256(t, key, base()))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.Subject != "ext-1" || c.Email != "asha@example.com" {
		t.Errorf("claims = %+v", c)
	}

	expired := base()
	expired["exp"] = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongIssuer := base()
	wrongIssuer["iss"] = "https://evil.test"
	noExp := base()
	delete(noExp, "exp")
	hmac, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, base()).SignedString([]byte("k"))

	cases := map[string]string{
		"expired":      signRS256(t, key, expired),
		"wrong issuer": signRS256(t, key, wrongIssuer),
		"no exp":       signRS256(t, key, noExp),
		"other key":    signRS256(t, generateKey(t), base()),
		"hmac":         hmac,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := p.Verify(context.Background(), raw); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("err = %v", err)
			}
		})
	}
}
