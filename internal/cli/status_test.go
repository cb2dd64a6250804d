package cli

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func TestTokenClaims(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{
		"sub":      "u1",
		"username": "alice",
		"exp":      exp.Unix(),
	})

	subject, username, expiry, err := tokenClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", subject)
	assert.Equal(t, "alice", username)
	assert.WithinDuration(t, exp, expiry, time.Second)
}

func TestTokenClaimsPartial(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "u1"})

	subject, username, expiry, err := tokenClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", subject)
	assert.Empty(t, username)
	assert.True(t, expiry.IsZero())
}

func TestTokenClaimsNotAJWT(t *testing.T) {
	_, _, _, err := tokenClaims("A1")
	assert.Error(t, err, "opaque tokens are fine on the wire but not decodable")
}
