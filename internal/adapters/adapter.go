// Package adapters provides the transport contract used to reach *arr services.
// The reconcile package only ever talks to a Client; concrete transports
// (direct HTTP, curl through docker exec, curl through a Kubernetes pod exec)
// live in sub-packages and are selected through the registry.
package adapters

import (
	"context"
	"fmt"

	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

// Client performs JSON requests against *arr resource collections.
// Paths are relative to the API base (e.g. "/customformat").
type Client interface {
	// Get fetches a collection or record and decodes the JSON response into result.
	Get(ctx context.Context, path string, result interface{}) error

	// Post submits body as a create request and optionally decodes the created record.
	Post(ctx context.Context, path string, body, result interface{}) error
}

// Factory builds a Client for a resolved connection.
type Factory func(ctx context.Context, conn *irv1.ConnectionIR) (Client, error)

// TransportError reports a remote call that did not complete successfully:
// network failures, non-success status codes, failed exec'd commands and
// undecodable responses all surface as this single type.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err for the given call. A nil err returns nil.
func NewTransportError(method, path string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Method: method, Path: path, Err: err}
}

// Transport names
const (
	TransportHTTP   = "http"
	TransportDocker = "docker"
	TransportKube   = "kube"
)

// Resource collection paths
const (
	PathCustomFormat   = "/customformat"
	PathQualityProfile = "/qualityprofile"
)

// Resource type constants
const (
	ResourceQualityProfile = "QualityProfile"
	ResourceCustomFormat   = "CustomFormat"
)
