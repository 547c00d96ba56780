package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret-the-client-never-sees"))
	require.NoError(t, err)
	return token
}

func TestInspectToken(t *testing.T) {
	issued := time.Now().Add(-time.Hour).Truncate(time.Second)
	expires := issued.Add(24 * time.Hour)

	info, err := InspectToken(signedToken(t, jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}))
	require.NoError(t, err)

	assert.Equal(t, "alice", info.Subject)
	assert.True(t, info.IssuedAt.Equal(issued))
	assert.True(t, info.ExpiresAt.Equal(expires))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(expires.Add(time.Second)))
}

func TestInspectToken_WithoutExpiry(t *testing.T) {
	info, err := InspectToken(signedToken(t, jwt.RegisteredClaims{Subject: "bob"}))
	require.NoError(t, err)
	assert.False(t, info.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestInspectToken_Garbage(t *testing.T) {
	_, err := InspectToken("not-a-jwt")
	assert.Error(t, err)
}
