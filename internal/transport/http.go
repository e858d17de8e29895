package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPClient is a Client backed by net/http with bearer token authentication.
type HTTPClient struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.client = c }
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(h *HTTPClient) { h.token = token }
}

// NewHTTPClient creates a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetToken replaces the bearer token used on subsequent requests.
func (h *HTTPClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func (h *HTTPClient) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return h.do(ctx, http.MethodGet, path, nil)
}

func (h *HTTPClient) Send(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return h.do(ctx, method, path, body)
}

func (h *HTTPClient) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	h.mu.RLock()
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	h.mu.RUnlock()

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		slog.Warn("Request failed", "method", method, "path", path, "error", err)
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	slog.Debug("Request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ApplicationError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, &ApplicationError{Status: resp.StatusCode, Message: "response is not valid JSON"}
	}
	return json.RawMessage(data), nil
}

// errorMessage extracts {"message": ...} from a failure body, or falls back
// to the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}
