package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/storefront/internal/models"
)

// TokenManager issues and verifies signed JWTs for the test backend.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate issues a signed JWT string for the provided user.
func (t *TokenManager) Generate(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   t.issuer,
		"sub":   fmt.Sprintf("%d", user.ID),
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Subject verifies tokenStr and returns its subject claim.
func (t *TokenManager) Subject(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(t.issuer))
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// ExpiresAt reads the exp claim without verifying the signature; the client
// never holds the signing key. ok is false for opaque (non-JWT) tokens and
// JWTs without exp.
func ExpiresAt(tokenStr string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, false
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// Expired reports whether the token is known to be past its exp at now.
// Tokens whose expiry cannot be read are not known to be invalid.
func Expired(tokenStr string, now time.Time) bool {
	exp, ok := ExpiresAt(tokenStr)
	return ok && !now.Before(exp)
}
