package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// Registry owns clients keyed by their identity. Entries are never removed.
type Registry struct {
	adapter Adapter
	opts    []ClientOption

	clients  map[ClientIdentity]*Client
	contexts map[string]*ConnectionContext
}

// NewRegistry creates a registry and registers a client for every identity.
func NewRegistry(adapter Adapter, identities []ClientIdentity, opts ...ClientOption) (*Registry, error) {
	if adapter == nil {
		return nil, ErrNoAdapter
	}

	r := &Registry{
		adapter:  adapter,
		opts:     opts,
		clients:  make(map[ClientIdentity]*Client),
		contexts: make(map[string]*ConnectionContext),
	}

	for _, id := range identities {
		if _, err := r.Register(id.Cluster, id.Database); err != nil {
			return nil, fmt.Errorf("r.Register(%s): %w", id, err)
		}
	}

	return r, nil
}

// connectionContext returns the cached context of a cluster or authenticates.
func (r *Registry) connectionContext(cluster string) (*ConnectionContext, error) {
	connCtx, ok := r.contexts[cluster]
	if ok {
		return connCtx, nil
	}

	connCtx, err := r.adapter.Authenticate(cluster)
	if err != nil {
		return nil, classify(fmt.Errorf("adapter.Authenticate: %w", err), ErrConnection)
	}

	r.contexts[cluster] = connCtx
	return connCtx, nil
}

// Register creates a new client for the pair. An existing entry for the same
// identity is overwritten.
func (r *Registry) Register(cluster, database string) (*Client, error) {
	id, err := NewClientIdentity(cluster, database)
	if err != nil {
		return nil, err
	}

	connCtx, err := r.connectionContext(id.Cluster)
	if err != nil {
		return nil, err
	}

	c, err := NewClient(connCtx, id.Database, r.adapter, r.opts...)
	if err != nil {
		return nil, err
	}

	r.clients[id] = c
	return c, nil
}

// Repoint moves the client registered under from to the pair to, so that
// the key and the client stay in sync. An entry already registered under to
// is overwritten. On failure nothing changes.
func (r *Registry) Repoint(from, to ClientIdentity) (*Client, error) {
	c, ok := r.clients[from]
	if !ok {
		return nil, ErrIdentityNotFound(from)
	}
	if _, err := NewClientIdentity(to.Cluster, to.Database); err != nil {
		return nil, err
	}

	connCtx, err := r.connectionContext(to.Cluster)
	if err != nil {
		return nil, err
	}

	c.connCtx = connCtx
	c.database = to.Database

	delete(r.clients, from)
	r.clients[to] = c
	return c, nil
}

// Lookup returns the client registered for the identity.
func (r *Registry) Lookup(id ClientIdentity) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// ExecuteAsTable runs a query on the client registered for the identity.
func (r *Registry) ExecuteAsTable(ctx context.Context, id ClientIdentity, query string, params ...QueryParam) (*Table, error) {
	c, ok := r.Lookup(id)
	if !ok {
		return nil, ErrIdentityNotFound(id)
	}

	return c.ExecuteAsTable(ctx, query, params...)
}

// Identities returns registered identities sorted by cluster and database.
func (r *Registry) Identities() []ClientIdentity {
	ids := make([]ClientIdentity, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b ClientIdentity) int {
		return cmp.Or(
			cmp.Compare(a.Cluster, b.Cluster),
			cmp.Compare(a.Database, b.Database),
		)
	})

	return ids
}

func (r *Registry) Len() int {
	return len(r.clients)
}
