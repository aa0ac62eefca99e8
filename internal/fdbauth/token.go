// Package fdbauth issues and verifies the signed per-tenant authorization
// tokens attached to transactions via
// fdbnative.TransactionOptionAuthorizationToken, mirroring FoundationDB's
// tenant authorization token feature. Verification follows the same
// HMAC-SHA256 JWT pattern dittofs uses for its own session tokens.
package fdbauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors returned by Issue and Verify.
var (
	ErrInvalidToken        = errors.New("fdbauth: invalid authorization token")
	ErrExpiredToken        = errors.New("fdbauth: authorization token has expired")
	ErrTenantMismatch      = errors.New("fdbauth: token does not authorize this tenant")
	ErrInvalidSecretLength = errors.New("fdbauth: signing secret must be at least 32 bytes")
)

// Claims identifies the tenant a token authorizes access to.
type Claims struct {
	jwt.RegisteredClaims
	Tenant string `json:"tenant"`
}

// Issuer mints and verifies tenant authorization tokens under a single
// HMAC signing key.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer builds an Issuer. secret must be at least 32 bytes; ttl is the
// lifetime given to every minted token.
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, ErrInvalidSecretLength
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: secret, ttl: ttl}, nil
}

// Issue mints a signed token authorizing access to the named tenant.
func (i *Issuer) Issue(tenant string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "fdb-go",
			Subject:   tenant,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Tenant: tenant,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("fdbauth: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a token's signature and expiry and confirms it authorizes
// the named tenant.
func (i *Issuer) Verify(tokenString string, tenant string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("fdbauth: unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Tenant != tenant {
		return nil, ErrTenantMismatch
	}

	return claims, nil
}
