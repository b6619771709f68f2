package adapters

import (
	"context"
	"errors"
	"testing"

	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

type nopClient struct{}

func (nopClient) Get(context.Context, string, interface{}) error { return nil }
func (nopClient) Post(context.Context, string, interface{}, interface{}) error { return nil }

func nopFactory(context.Context, *irv1.ConnectionIR) (Client, error) { return nopClient{}, nil }

func TestRegistry(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(TransportHTTP, nopFactory)
	Register(TransportDocker, nopFactory)

	if _, ok := Get(TransportHTTP); !ok {
		t.Errorf("expected %s to be registered", TransportHTTP)
	}
	if _, ok := Get(TransportKube); ok {
		t.Errorf("expected %s to be absent", TransportKube)
	}
	if got := List(); len(got) != 2 || got[0] != TransportDocker || got[1] != TransportHTTP {
		t.Errorf("expected sorted names, got %v", got)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected duplicate Register to panic")
			}
		}()
		Register(TransportHTTP, nopFactory)
	}()

	RegisterOrReplace(TransportHTTP, nopFactory)
	if !Unregister(TransportHTTP) || Unregister(TransportHTTP) {
		t.Errorf("expected exactly one successful Unregister")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected MustGet of a missing transport to panic")
			}
		}()
		MustGet(TransportHTTP)
	}()
}

func TestTransportError(t *testing.T) {
	if NewTransportError("GET", "/customformat", nil) != nil {
		t.Errorf("expected nil for a nil cause")
	}

	cause := errors.New("connection refused")
	err := NewTransportError("POST", "/qualityprofile", cause)
	if err.Error() != "POST /qualityprofile: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected the cause to be unwrapped")
	}
}
