package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := IssueToken("user-123", "alice", "a@x.com", []string{"reader"}, secret, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, []string{"reader"}, claims.Roles)
}

func TestIssueToken_ExpiryIsIssuedAtPlusTTL(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	ttl := time.Hour

	tok, err := IssueToken("u1", "bob", "b@x.com", []string{"reader"}, secret, ttl)
	require.NoError(t, err)

	claims, err := VerifyToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, ttl, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := IssueToken("u1", "bob", "b@x.com", []string{"reader"}, secret, -time.Second)
	require.NoError(t, err)

	_, err = VerifyToken(tok, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := IssueToken("u2", "carol", "c@x.com", []string{"admin"}, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := VerifyToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
