package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	access, aexp, err := m.GenerateAccessToken("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), aexp, 5*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	refresh, rexp, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), rexp, 5*time.Second)

	claims, err = m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestJWTTokensAreUniquePerIssue(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Minute, 24*time.Hour)

	// back-to-back issuance lands within the same second; the jti claim must
	// still make every token distinct or refresh rotation swaps a token for
	// itself
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		tok, _, err := m.GenerateRefreshToken("user-1")
		require.NoError(t, err)
		assert.False(t, seen[tok], "issued refresh token repeated")
		seen[tok] = true

		claims, err := m.ParseRefreshToken(tok)
		require.NoError(t, err)
		assert.NotEmpty(t, claims.ID)
	}

	a1, _, err := m.GenerateAccessToken("user-1")
	require.NoError(t, err)
	a2, _, err := m.GenerateAccessToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)
}

func TestJWTSecretsAreNotInterchangeable(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("user-1")
	require.NoError(t, err)
	refresh, _, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err, "access token must not verify as a refresh token")
	_, err = m.ParseAccessToken(refresh)
	assert.Error(t, err, "refresh token must not verify as an access token")
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	other := NewJWTManager("different", "different", time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(access)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	access, _, err := m.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(access)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	_, err := m.ParseAccessToken("not.a.token")
	assert.Error(t, err)
	_, err = m.ParseAccessToken("")
	assert.Error(t, err)
}
