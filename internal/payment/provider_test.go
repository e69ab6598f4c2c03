package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sessions", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var req CreateSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ref-1", req.Reference)
		assert.Equal(t, int64(1500), req.Amount)

		json.NewEncoder(w).Encode(Session{ID: "cs_abc", URL: "https://pay.example/cs_abc", Status: "pending"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-123")
	s, err := client.CreateSession(context.Background(), CreateSessionRequest{
		Reference: "ref-1", Amount: 1500, Description: "A Book (purchase)",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_abc", s.ID)
	assert.Equal(t, "https://pay.example/cs_abc", s.URL)
}

func TestClient_ConfirmSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions/cs_abc/confirm", r.URL.Path)
		json.NewEncoder(w).Encode(Session{ID: "cs_abc", Status: "paid"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	s, err := client.ConfirmSession(context.Background(), "cs_abc")
	require.NoError(t, err)
	assert.Equal(t, "paid", s.Status)
}

func TestClient_ProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.ConfirmSession(context.Background(), "cs_abc")
	assert.Error(t, err)
}
