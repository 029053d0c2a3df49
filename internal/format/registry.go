// Package format serializes extracted record sets into output documents.
//
// Serializers register themselves by name in init(), the same way input
// readers are picked by kind, so the CLI and engine only deal in names.
package format

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// Serializer renders a record set as one output document.
type Serializer interface {
	// Name is the registry name ("xml", "json", ...).
	Name() string
	// Extension is the output file extension without the dot.
	Extension() string
	// Serialize renders records in order. An empty set yields a valid
	// empty document.
	Serialize(records core.RecordSet) ([]byte, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Serializer)
)

// Register adds a serializer factory to the registry.
// Called by serializer implementations in their init() functions.
func Register(name string, factory func() Serializer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// Get retrieves a serializer factory by name. Names are case-insensitive.
func Get(name string) (func() Serializer, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// New creates the serializer registered under name.
func New(name string) (Serializer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("output format not specified")
	}
	factory, ok := Get(name)
	if !ok {
		return nil, &UnknownFormatError{Format: name, Available: List()}
	}
	return factory(), nil
}

// List returns all registered format names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a format is registered.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownFormatError is returned when an unknown output format is requested.
type UnknownFormatError struct {
	Format    string
	Available []string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q\nAvailable formats: %v\nHint: Check format in flatconv.yaml or --format", e.Format, e.Available)
}
