package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sudo-init-do/libhub/internal/config"
)

// MediaHost stores an uploaded asset and returns a stable URL for it.
type MediaHost interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// mediaClient talks to the hosted media service over multipart HTTP.
type mediaClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var host MediaHost

// Init wires the package to the configured media host.
func Init() {
	host = &mediaClient{
		baseURL: config.C.MediaBaseURL,
		apiKey:  config.C.MediaAPIKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetHost swaps the media host; tests use this.
func SetHost(h MediaHost) { host = h }

func (m *mediaClient) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("media host: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.URL, nil
}
