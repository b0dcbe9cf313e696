package cli

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// forgedToken decodes fine but is not signed by the API
func forgedToken(t *testing.T) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":  "lifter",
		"role": "user",
	}).SignedString([]byte("not-the-api-key"))
	require.NoError(t, err)
	return token
}
