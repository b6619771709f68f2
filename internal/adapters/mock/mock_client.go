/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package mock provides an in-memory *arr service for testing.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"k8s.io/utils/ptr"

	"github.com/poiley/arr-quality/internal/adapters"
	"github.com/poiley/arr-quality/internal/adapters/shared"
)

// Client implements adapters.Client against in-memory custom format and
// quality profile collections. Records pass through JSON in both directions,
// the same as on the wire, so tests see exactly what a server would store.
type Client struct {
	mu sync.Mutex

	CustomFormats   []shared.CustomFormatResource
	QualityProfiles []shared.QualityProfileResource

	// NextID is the next server-assigned ID (starts at 1 when zero)
	NextID int

	// Errors maps "METHOD path" to the error returned for that call
	Errors map[string]error

	// Call tracking for assertions
	Calls []Call
}

// Call records a single request.
type Call struct {
	Method string
	Path   string
	Body   []byte
}

var _ adapters.Client = (*Client)(nil)

// NewClient creates an empty in-memory service.
func NewClient() *Client {
	return &Client{Errors: make(map[string]error)}
}

// FailOn makes every call to method+path fail with a TransportError wrapping err.
func (m *Client) FailOn(method, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Errors == nil {
		m.Errors = make(map[string]error)
	}
	m.Errors[method+" "+path] = err
}

// Get returns the stored collection for path.
func (m *Client) Get(_ context.Context, path string, result interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{Method: http.MethodGet, Path: path})
	if err := m.errorFor(http.MethodGet, path); err != nil {
		return err
	}

	var collection interface{}
	switch path {
	case adapters.PathCustomFormat:
		collection = m.CustomFormats
	case adapters.PathQualityProfile:
		collection = m.QualityProfiles
	default:
		return adapters.NewTransportError(http.MethodGet, path, fmt.Errorf("unexpected status 404: not found"))
	}

	return roundTrip(collection, result)
}

// Post stores body in the collection for path and assigns it an ID.
func (m *Client) Post(_ context.Context, path string, body, result interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(body)
	if err != nil {
		return adapters.NewTransportError(http.MethodPost, path, err)
	}
	m.Calls = append(m.Calls, Call{Method: http.MethodPost, Path: path, Body: data})
	if err := m.errorFor(http.MethodPost, path); err != nil {
		return err
	}

	var created interface{}
	switch path {
	case adapters.PathCustomFormat:
		var cf shared.CustomFormatResource
		if err := json.Unmarshal(data, &cf); err != nil {
			return adapters.NewTransportError(http.MethodPost, path, err)
		}
		cf.ID = ptr.To(m.nextID())
		m.CustomFormats = append(m.CustomFormats, cf)
		created = cf
	case adapters.PathQualityProfile:
		var qp shared.QualityProfileResource
		if err := json.Unmarshal(data, &qp); err != nil {
			return adapters.NewTransportError(http.MethodPost, path, err)
		}
		qp.ID = ptr.To(m.nextID())
		m.QualityProfiles = append(m.QualityProfiles, qp)
		created = qp
	default:
		return adapters.NewTransportError(http.MethodPost, path, fmt.Errorf("unexpected status 404: not found"))
	}

	if result == nil {
		return nil
	}
	return roundTrip(created, result)
}

// CallsTo returns the recorded calls matching method and path.
func (m *Client) CallsTo(method, path string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Call
	for _, c := range m.Calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears all call tracking data.
func (m *Client) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

func (m *Client) errorFor(method, path string) error {
	if err, ok := m.Errors[method+" "+path]; ok {
		return adapters.NewTransportError(method, path, err)
	}
	return nil
}

func (m *Client) nextID() int {
	if m.NextID == 0 {
		m.NextID = 1
	}
	id := m.NextID
	m.NextID++
	return id
}

func roundTrip(in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
