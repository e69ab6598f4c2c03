package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sudo-init-do/libhub/internal/config"
)

// Provider is the hosted checkout collaborator. The server only ever talks
// to it through these two calls.
type Provider interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)
	ConfirmSession(ctx context.Context, sessionID string) (*Session, error)
}

type CreateSessionRequest struct {
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type Session struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"` // pending|paid|failed
}

// Client is a JSON-over-HTTP Provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// provider is the process-wide checkout client, set by Init.
var provider Provider

// Init wires the package to the configured checkout provider.
func Init() {
	provider = NewClient(config.C.CheckoutBaseURL, config.C.CheckoutAPIKey)
}

// SetProvider swaps the provider; tests use this.
func SetProvider(p Provider) { provider = p }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("checkout provider: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ConfirmSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/"+sessionID+"/confirm", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
