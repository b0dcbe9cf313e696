package jwt

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_SealOpen(t *testing.T) {
	tm := NewTokenManager(testSecret, "fitforge-web", 1)

	envelope, err := tm.Seal("api-bearer-token")
	require.NoError(t, err)

	claims, err := tm.Open(envelope)
	require.NoError(t, err)
	assert.Equal(t, "api-bearer-token", claims.Bearer)
	assert.Equal(t, "fitforge-web", claims.Issuer)
}

func TestTokenManager_OpenRejectsForeignSecret(t *testing.T) {
	sealer := NewTokenManager("another-secret-another-secret-000", "fitforge-web", 1)
	envelope, err := sealer.Seal("api-bearer-token")
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, "fitforge-web", 1).Open(envelope)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_OpenRejectsForeignIssuer(t *testing.T) {
	envelope, err := NewTokenManager(testSecret, "someone-else", 1).Seal("x")
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, "fitforge-web", 1).Open(envelope)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_OpenExpired(t *testing.T) {
	tm := NewTokenManager(testSecret, "fitforge-web", -1)
	envelope, err := tm.Seal("api-bearer-token")
	require.NoError(t, err)

	_, err = tm.Open(envelope)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPeekClaims_IgnoresSignature(t *testing.T) {
	// Signed with a key this process never sees
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":  "coach_anna",
		"role": "instructor",
	}).SignedString([]byte("api-server-secret"))
	require.NoError(t, err)

	claims, err := PeekClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "coach_anna", claims["sub"])
	assert.Equal(t, "instructor", claims["role"])
}

func TestPeekClaims_Malformed(t *testing.T) {
	for _, token := range []string{"", "admin-token-123", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"} {
		_, err := PeekClaims(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTimingSafeCompare(t *testing.T) {
	assert.True(t, TimingSafeCompare("abc", "abc"))
	assert.False(t, TimingSafeCompare("abc", "abd"))
	assert.False(t, TimingSafeCompare("abc", ""))
}
