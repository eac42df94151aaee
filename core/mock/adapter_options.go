package mock

import (
	"context"

	"github.com/sliops/kqlframe/core"
)

type adapterConfig struct {
	querySideEffects map[string]func(context.Context, string, []core.QueryParam) error
	responses        map[string]*core.ResultTable
	defaultResponse  *core.ResultTable
	responder        func(string, []core.QueryParam) (*core.Response, error)
	authErrors       map[string]error
	connectError     error
}

type AdapterOption func(*adapterConfig)

func AdapterWithQuerySideEffect(query string, sideEffect func(ctx context.Context, database string, params []core.QueryParam) error) AdapterOption {
	return func(c *adapterConfig) {
		_, ok := c.querySideEffects[query]
		if ok {
			panic("side effect already registered for query: " + query)
		}

		c.querySideEffects[query] = sideEffect
	}
}

// AdapterWithResponse answers the exact query text with the table.
func AdapterWithResponse(query string, table *core.ResultTable) AdapterOption {
	return func(c *adapterConfig) {
		_, ok := c.responses[query]
		if ok {
			panic("response already registered for query: " + query)
		}

		c.responses[query] = table
	}
}

// AdapterWithDefaultResponse answers every query without a registered response.
func AdapterWithDefaultResponse(table *core.ResultTable) AdapterOption {
	return func(c *adapterConfig) {
		c.defaultResponse = table
	}
}

// AdapterWithResponder computes responses instead of looking them up.
func AdapterWithResponder(fn func(query string, params []core.QueryParam) (*core.Response, error)) AdapterOption {
	return func(c *adapterConfig) {
		c.responder = fn
	}
}

func AdapterWithAuthError(cluster string, err error) AdapterOption {
	return func(c *adapterConfig) {
		c.authErrors[cluster] = err
	}
}

func AdapterWithConnectError(err error) AdapterOption {
	return func(c *adapterConfig) {
		c.connectError = err
	}
}
