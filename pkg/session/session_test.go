package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, userID, username string, roles []string, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       userID,
		"username": username,
		"email":    username + "@x.com",
		"role":     roles,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	})
	s, err := tok.SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return s
}

func newFileStore(t *testing.T) (*Store, Storage) {
	t.Helper()
	storage := NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	return New(storage), storage
}

func TestFileStorage_RoundTrip(t *testing.T) {
	t.Parallel()

	storage := NewFileStorage(filepath.Join(t.TempDir(), "s.json"))

	_, err := storage.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.Set("k", "v"))
	v, err := storage.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, storage.Delete("k"))
	_, err = storage.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoginSucceeded_PersistsAndAuthenticates(t *testing.T) {
	t.Parallel()

	store, storage := newFileStore(t)
	tok := signedToken(t, "u1", "alice", []string{"reader"}, time.Hour)

	require.NoError(t, store.LoginSucceeded(tok))

	st := store.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "u1", st.UserID)
	assert.Equal(t, "alice", st.Username)
	assert.Equal(t, []string{"reader"}, st.Roles)
	assert.True(t, st.ExpiresAt.After(time.Now()))

	raw, err := storage.Get("authToken")
	require.NoError(t, err)
	assert.Equal(t, tok, raw)
	roles, err := storage.Get("roles")
	require.NoError(t, err)
	assert.JSONEq(t, `["reader"]`, roles)
}

func TestRehydrate_ValidToken(t *testing.T) {
	t.Parallel()

	store, storage := newFileStore(t)
	tok := signedToken(t, "u1", "alice", []string{"reader", "author"}, time.Hour)
	require.NoError(t, store.LoginSucceeded(tok))

	// A fresh store over the same storage, as after a restart.
	restarted := New(storage)
	require.NoError(t, restarted.Rehydrate())

	st := restarted.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "alice", st.Username)
	assert.Equal(t, []string{"reader", "author"}, st.Roles)
}

func TestRehydrate_ExpiredTokenClearsStorage(t *testing.T) {
	t.Parallel()

	store, storage := newFileStore(t)
	tok := signedToken(t, "u1", "alice", []string{"reader"}, -time.Minute)
	require.NoError(t, storage.Set("authToken", tok))
	require.NoError(t, storage.Set("roles", `["reader"]`))

	require.NoError(t, store.Rehydrate())

	assert.False(t, store.State().Authenticated)
	_, err := storage.Get("authToken")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = storage.Get("roles")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRehydrate_NoToken(t *testing.T) {
	t.Parallel()

	store, _ := newFileStore(t)
	require.NoError(t, store.Rehydrate())
	assert.False(t, store.State().Authenticated)
}

func TestRehydrate_GarbageTokenClears(t *testing.T) {
	t.Parallel()

	store, storage := newFileStore(t)
	require.NoError(t, storage.Set("authToken", "not.a.jwt"))

	require.NoError(t, store.Rehydrate())
	assert.False(t, store.State().Authenticated)
	_, err := storage.Get("authToken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogout_ClearsEverything(t *testing.T) {
	t.Parallel()

	store, storage := newFileStore(t)
	tok := signedToken(t, "u1", "alice", []string{"reader"}, time.Hour)
	require.NoError(t, store.LoginSucceeded(tok))

	require.NoError(t, store.Logout())

	assert.False(t, store.State().Authenticated)
	assert.Empty(t, store.State().Token)
	_, err := storage.Get("authToken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestState_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store, _ := newFileStore(t)
	tok := signedToken(t, "u1", "alice", []string{"reader"}, time.Hour)
	require.NoError(t, store.LoginSucceeded(tok))

	st := store.State()
	st.Roles[0] = "admin"
	assert.Equal(t, []string{"reader"}, store.State().Roles)
}
