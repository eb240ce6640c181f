package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestRolesFromToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":   "42",
		"roles": []any{"ADMIN", "CLIENT"},
	})
	assert.Equal(t, []string{"ADMIN", "CLIENT"}, RolesFromToken(token))
}

func TestRolesFromTokenFiltersNonStrings(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"roles": []any{"MANAGER", 5, true, "CLIENT"},
	})
	assert.Equal(t, []string{"MANAGER", "CLIENT"}, RolesFromToken(token))
}

func TestRolesFromTokenMalformed(t *testing.T) {
	assert.Empty(t, RolesFromToken("not-a-token"))
	assert.Empty(t, RolesFromToken(""))
	assert.Empty(t, RolesFromToken("a.b.c"))
}

func TestRolesFromTokenMissingClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "42"})
	assert.Empty(t, RolesFromToken(token))
}

func TestRolesFromTokenNonListClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"roles": "ADMIN"})
	assert.Empty(t, RolesFromToken(token))
}

func TestTokenExpiry(t *testing.T) {
	future := time.Now().Add(time.Hour)
	token := signedToken(t, jwt.MapClaims{"exp": future.Unix()})

	exp, ok := TokenExpiry(token)
	require.True(t, ok)
	assert.WithinDuration(t, future, exp, time.Second)
}

func TestTokenExpiryMissingOrBroken(t *testing.T) {
	_, ok := TokenExpiry(signedToken(t, jwt.MapClaims{"sub": "42"}))
	assert.False(t, ok)

	_, ok = TokenExpiry("garbage")
	assert.False(t, ok)
}
