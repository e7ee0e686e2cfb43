package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)

	access, err := issuer.GenerateAccessToken("u1", []string{"RIDER", "DRIVER"})
	require.NoError(t, err)

	claims, err := issuer.VerifyToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", string(claims.UserID))
	assert.Equal(t, []string{"RIDER", "DRIVER"}, claims.Roles)
}

func TestRefreshTokenHasNoRoles(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)

	refresh, err := issuer.GenerateRefreshToken("u1")
	require.NoError(t, err)

	claims, err := issuer.VerifyToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", string(claims.UserID))
	assert.Empty(t, claims.Roles)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute, time.Hour)

	access, err := issuer.GenerateAccessToken("u1", nil)
	require.NoError(t, err)

	_, err = issuer.VerifyToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Minute, time.Hour)
	other := NewTokenIssuer("secret-b", time.Minute, time.Hour)

	access, err := issuer.GenerateAccessToken("u1", nil)
	require.NoError(t, err)

	_, err = other.VerifyToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
