package adapters

import (
	"fmt"
	"sort"
	"sync"
)

// registry holds all registered transport factories
var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register adds a transport factory to the registry.
// It panics if a factory with the same name is already registered.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("transport %q already registered", name))
	}
	registry[name] = f
}

// Get retrieves a transport factory by name.
// Returns nil, false if no factory is registered under that name.
func Get(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := registry[name]
	return f, ok
}

// MustGet retrieves a transport factory by name.
// It panics if no factory is registered under that name.
func MustGet(name string) Factory {
	f, ok := Get(name)
	if !ok {
		panic(fmt.Sprintf("no transport registered as %q", name))
	}
	return f
}

// List returns all registered transport names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all registered factories.
// This is primarily useful for testing.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Factory)
}

// RegisterOrReplace adds or replaces a transport factory in the registry.
// Unlike Register, this does not panic if the name is already taken.
// This is primarily useful for testing where you want to inject fake clients.
func RegisterOrReplace(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = f
}

// Unregister removes a transport factory from the registry.
// Returns true if the factory was removed, false if it didn't exist.
func Unregister(name string) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		delete(registry, name)
		return true
	}
	return false
}
