package jwt

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claims")
)

// EnvelopeClaims are the claims of the signed session cookie. The cookie only
// carries the course API bearer token; it is signed so the browser cannot
// swap in a token of its choosing between requests.
type EnvelopeClaims struct {
	Bearer string `json:"bt"`
	jwt.RegisteredClaims
}

// TokenManager seals and opens session envelopes
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, issuer string, ttlHours int) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    time.Duration(ttlHours) * time.Hour,
	}
}

// Seal wraps a bearer token into a signed envelope
func (tm *TokenManager) Seal(bearer string) (string, error) {
	now := time.Now()

	claims := EnvelopeClaims{
		Bearer: bearer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tm.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session envelope: %w", err)
	}

	return signed, nil
}

// Open validates an envelope and returns its claims
func (tm *TokenManager) Open(envelope string) (*EnvelopeClaims, error) {
	token, err := jwt.ParseWithClaims(envelope, &EnvelopeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*EnvelopeClaims)
	if !ok || !token.Valid || claims.Bearer == "" {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

// TTL returns the envelope lifetime
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// PeekClaims decodes a token's payload WITHOUT verifying its signature.
// The result is only fit for display decisions.
func PeekClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// TimingSafeCompare performs a timing-safe comparison of two strings
// This prevents timing attacks when comparing tokens
func TimingSafeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
