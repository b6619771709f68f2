// Package httpclient provides the direct HTTP transport for *arr API
// communication. Requests carry the X-Api-Key header and JSON bodies.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/poiley/arr-quality/internal/adapters"
	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for *arr API communication.
// It handles authentication via X-Api-Key header and JSON serialization.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ adapters.Client = (*Client)(nil)

// Config contains configuration options for creating a new Client.
type Config struct {
	// BaseURL is the API root (e.g., "http://radarr:7878/api/v3")
	BaseURL string

	// APIKey is the API key for authentication
	APIKey string

	// InsecureSkipVerify disables TLS certificate verification
	// Warning: Only use this for self-signed certificates in trusted environments
	InsecureSkipVerify bool

	// Timeout is the HTTP request timeout (defaults to DefaultTimeout if zero)
	Timeout time.Duration
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	hc := &http.Client{
		Timeout: timeout,
	}

	if cfg.InsecureSkipVerify {
		hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // User explicitly requested insecure
		}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: hc,
	}
}

// NewFromConnection is the adapters.Factory for the http transport.
func NewFromConnection(_ context.Context, conn *irv1.ConnectionIR) (adapters.Client, error) {
	return New(Config{
		BaseURL:            conn.BaseURL(),
		APIKey:             conn.APIKey,
		InsecureSkipVerify: conn.InsecureSkipVerify,
		Timeout:            conn.Timeout,
	}), nil
}

// Get performs a GET request and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return adapters.NewTransportError(http.MethodGet, path,
		c.do(ctx, http.MethodGet, path, nil, result, http.StatusOK))
}

// Post performs a POST request with a JSON body and optionally decodes the response.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return adapters.NewTransportError(http.MethodPost, path,
		c.do(ctx, http.MethodPost, path, body, result, http.StatusOK, http.StatusCreated, http.StatusAccepted))
}

// BaseURL returns the base URL configured for this client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, okStatus ...int) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusIn(resp.StatusCode, okStatus) {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	if result == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusIn(code int, ok []int) bool {
	for _, s := range ok {
		if code == s {
			return true
		}
	}
	return false
}
