// Package execclient reaches an *arr API by running curl inside the service's
// own container. This needs no published port and no route from the caller to
// the service: only the ability to exec into the container (docker or a
// Kubernetes pod).
package execclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/poiley/arr-quality/internal/adapters"
	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

// Executor runs a command inside the target container.
type Executor interface {
	// Exec runs cmd, feeding stdin when non-nil. A non-zero exit status is
	// returned as *ExitError alongside whatever output was captured.
	Exec(ctx context.Context, cmd []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("command exited with status %d", e.Code)
	}
	return fmt.Sprintf("command exited with status %d: %s", e.Code, msg)
}

// Client implements adapters.Client by exec'ing curl against localhost.
type Client struct {
	exec    Executor
	baseURL string
	apiKey  string
}

var _ adapters.Client = (*Client)(nil)

// New creates a Client. baseURL is the API root as seen from inside the
// container (see irv1.ConnectionIR.LocalURL).
func New(exec Executor, baseURL, apiKey string) *Client {
	return &Client{
		exec:    exec,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewExecutor builds the Executor for an exec transport.
func NewExecutor(conn *irv1.ConnectionIR) (Executor, error) {
	switch conn.Transport {
	case adapters.TransportDocker:
		return NewDockerExecutor(conn.Target)
	case adapters.TransportKube:
		return NewKubeExecutorForTarget(conn.Target, conn.Namespace, conn.Container)
	default:
		return nil, fmt.Errorf("transport %q does not support exec", conn.Transport)
	}
}

// NewFromConnection is the adapters.Factory for the docker and kube transports.
func NewFromConnection(_ context.Context, conn *irv1.ConnectionIR) (adapters.Client, error) {
	exec, err := NewExecutor(conn)
	if err != nil {
		return nil, err
	}
	return New(exec, conn.LocalURL(), conn.APIKey), nil
}

// Get performs a GET request and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return adapters.NewTransportError(http.MethodGet, path,
		c.do(ctx, http.MethodGet, path, nil, result))
}

// Post performs a POST request with a JSON body and optionally decodes the response.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return adapters.NewTransportError(http.MethodPost, path,
		c.do(ctx, http.MethodPost, path, body, result))
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var stdin io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		stdin = bytes.NewReader(data)
	}

	stdout, _, err := c.exec.Exec(ctx, CurlCommand(method, c.baseURL+path, c.apiKey, body != nil), stdin)
	if err != nil {
		return err
	}

	if result == nil || len(bytes.TrimSpace(stdout)) == 0 {
		return nil
	}
	if err := json.Unmarshal(stdout, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CurlCommand builds the curl invocation for one API call. The request body,
// if any, is read from stdin.
func CurlCommand(method, url, apiKey string, withBody bool) []string {
	cmd := []string{"curl", "-sSf"}
	if method != http.MethodGet {
		cmd = append(cmd, "-X", method)
	}
	cmd = append(cmd,
		"-H", "Content-Type: application/json",
		"-H", "X-Api-Key: "+apiKey,
	)
	if withBody {
		cmd = append(cmd, "-d", "@-")
	}
	return append(cmd, url)
}
