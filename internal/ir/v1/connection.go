package v1

import (
	"fmt"
	"strings"
	"time"
)

// DefaultAPIBase is the API prefix shared by Radarr and Sonarr.
const DefaultAPIBase = "/api/v3"

// ConnectionIR holds resolved connection details
type ConnectionIR struct {
	// Transport selects how requests reach the service: http, docker or kube
	Transport string `json:"transport"`

	// Target is a hostname (http), container name (docker) or [namespace/]pod (kube)
	Target string `json:"target"`

	// Port the service listens on
	Port int `json:"port"`

	APIKey             string        `json:"apiKey"` // Resolved from the CLI or auto-discovery
	APIBase            string        `json:"apiBase,omitempty"`
	Scheme             string        `json:"scheme,omitempty"`
	Namespace          string        `json:"namespace,omitempty"` // kube only, used when Target has no namespace
	Container          string        `json:"container,omitempty"` // kube only
	InsecureSkipVerify bool          `json:"insecureSkipVerify,omitempty"`
	Timeout            time.Duration `json:"timeout,omitempty"`
}

// BaseURL returns the API root as seen from the caller (http transport).
func (c *ConnectionIR) BaseURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, c.Target, c.Port, c.apiBase())
}

// LocalURL returns the API root as seen from inside the service's own
// container (exec transports).
func (c *ConnectionIR) LocalURL() string {
	return fmt.Sprintf("http://localhost:%d%s", c.Port, c.apiBase())
}

func (c *ConnectionIR) apiBase() string {
	if c.APIBase == "" {
		return DefaultAPIBase
	}
	return "/" + strings.Trim(c.APIBase, "/")
}

// Validate checks the fields every transport needs.
func (c *ConnectionIR) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("connection target is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	return nil
}
