// Package auth verifies the opaque bearer credentials handed to the engine.
// Token issuance belongs to the identity collaborator; the signer kept here
// exists for tests and operational tooling that need a valid token in hand.
package auth

import (
	"fmt"
	"strings"
	"time"

	apperrors "huddle/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the structure of the data stored inside the JWT.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens against a shared HMAC key.
// The key is injected at construction; there is no package-level secret.
type Verifier struct {
	key []byte
}

func NewVerifier(secret string) Verifier {
	return Verifier{key: []byte(secret)}
}

// Verify parses and validates the signature and expiration of a bearer
// token and returns the user identity it carries. A leading "Bearer "
// prefix is tolerated. Every failure mode collapses into
// errors.ErrUnauthenticated: the caller must treat them all the same way,
// a hard close of the connection attempt.
func (v Verifier) Verify(raw string) (string, error) {
	raw = strings.TrimPrefix(raw, "Bearer ")
	if raw == "" {
		return "", fmt.Errorf("%w: empty token", apperrors.ErrUnauthenticated)
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("%w: invalid claims", apperrors.ErrUnauthenticated)
	}
	return claims.UserID, nil
}

// Issue creates a signed token for a specific user, HS256 like the
// identity collaborator does.
func (v Verifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "huddle",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.key)
}
