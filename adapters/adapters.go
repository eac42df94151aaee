package adapters

import (
	"errors"
	"fmt"

	"github.com/sliops/kqlframe/core"
)

var (
	errNoValidTypeAliases   = errors.New("no valid type aliases provided")
	ErrUnsupportedTypeAlias = errors.New("no adapter registered for provided type alias")
)

// Options configure how an adapter authenticates.
type Options struct {
	AuthMethod AuthMethod
	TenantID   string
	ClientID   string
	// Prompt is shown to the user by interactive authentication flows.
	Prompt func(message string)
}

// Factory creates an adapter from options.
type Factory func(opts *Options) (core.Adapter, error)

// registeredAdapters holds implemented adapters - specific adapters register themselves in their init functions.
var registeredAdapters = make(map[string]Factory)

// register registers a new adapter factory for a service type
func register(factory Factory, aliases ...string) error {
	if len(aliases) < 1 {
		return errNoValidTypeAliases
	}

	invalidCount := 0
	for _, alias := range aliases {
		if alias == "" {
			invalidCount++
			continue
		}
		registeredAdapters[alias] = factory
	}

	if invalidCount == len(aliases) {
		return errNoValidTypeAliases
	}

	return nil
}

// Mux is an interface to all internal adapters.
type Mux struct{}

// GetAdapter creates the adapter registered under typ.
func (*Mux) GetAdapter(typ string, opts *Options) (core.Adapter, error) {
	factory, ok := registeredAdapters[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTypeAlias, typ)
	}
	if opts == nil {
		opts = &Options{}
	}

	adapter, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("factory(%s): %w", typ, err)
	}

	return adapter, nil
}

// AddAdapter registers an already constructed adapter under typ.
func (*Mux) AddAdapter(typ string, adapter core.Adapter) error {
	return register(func(*Options) (core.Adapter, error) { return adapter, nil }, typ)
}
