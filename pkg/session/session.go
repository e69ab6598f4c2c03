// Package session is the client-side mirror of a server-issued session
// token. It is a derived cache, not a source of truth: the signed token
// itself is authoritative, the cache only avoids re-authenticating on
// every start. State changes only through the defined transitions
// (LoginSucceeded, Logout, rehydration at load).
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Storage keys, matching the shapes the web client persists.
const (
	keyToken = "authToken"
	keyRoles = "roles"
)

// State is an immutable snapshot of the authenticated session.
type State struct {
	Authenticated bool
	Token         string
	UserID        string
	Username      string
	Email         string
	Roles         []string
	ExpiresAt     time.Time
}

// claims mirrors the server's token payload. Decoded without signature
// verification: the client holds no secret, and the server re-verifies
// on every request anyway.
type claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"role"`
}

// Store holds the in-memory session state backed by a Storage.
type Store struct {
	storage Storage
	state   State
	now     func() time.Time
}

func New(storage Storage) *Store {
	return &Store{storage: storage, now: time.Now}
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	out := s.state
	out.Roles = append([]string(nil), s.state.Roles...)
	return out
}

func decodeToken(token string) (*claims, error) {
	cl := &claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, cl); err != nil {
		return nil, err
	}
	if cl.ExpiresAt == nil {
		return nil, errors.New("session: token has no expiry")
	}
	return cl, nil
}

// Rehydrate restores the authenticated state from storage at startup.
// A missing, undecodable, or expired token clears every stored key.
func (s *Store) Rehydrate() error {
	token, err := s.storage.Get(keyToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.Logout()
		}
		return err
	}

	cl, err := decodeToken(token)
	if err != nil || !cl.ExpiresAt.After(s.now()) {
		return s.Logout()
	}

	roles := cl.Roles
	if stored, err := s.storage.Get(keyRoles); err == nil {
		var parsed []string
		if json.Unmarshal([]byte(stored), &parsed) == nil {
			roles = parsed
		}
	}

	s.state = State{
		Authenticated: true,
		Token:         token,
		UserID:        cl.UserID,
		Username:      cl.Username,
		Email:         cl.Email,
		Roles:         roles,
		ExpiresAt:     cl.ExpiresAt.Time,
	}
	return nil
}

// LoginSucceeded records a freshly issued token: decodes its claims,
// persists the raw token and the serialized role list, and flips the
// in-memory state to authenticated.
func (s *Store) LoginSucceeded(token string) error {
	cl, err := decodeToken(token)
	if err != nil {
		return err
	}

	if err := s.storage.Set(keyToken, token); err != nil {
		return err
	}
	rolesJSON, _ := json.Marshal(cl.Roles)
	if err := s.storage.Set(keyRoles, string(rolesJSON)); err != nil {
		return err
	}

	s.state = State{
		Authenticated: true,
		Token:         token,
		UserID:        cl.UserID,
		Username:      cl.Username,
		Email:         cl.Email,
		Roles:         cl.Roles,
		ExpiresAt:     cl.ExpiresAt.Time,
	}
	return nil
}

// Logout clears the in-memory state and every stored session key.
func (s *Store) Logout() error {
	s.state = State{}
	if err := s.storage.Delete(keyToken); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := s.storage.Delete(keyRoles); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
