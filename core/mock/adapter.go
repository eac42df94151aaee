package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/core/builders"
)

// Call is a query received by a mocked driver.
type Call struct {
	Cluster  string
	Database string
	Query    string
	Params   []core.QueryParam
}

var _ core.Driver = (*driver)(nil)

type driver struct {
	cluster string
	adapter *Adapter
}

func (d *driver) Query(ctx context.Context, database string, query string, params []core.QueryParam) (*core.Response, error) {
	d.adapter.record(Call{
		Cluster:  d.cluster,
		Database: database,
		Query:    query,
		Params:   params,
	})

	config := d.adapter.config

	eff, ok := config.querySideEffects[query]
	if ok {
		err := eff(ctx, database, params)
		if err != nil {
			return nil, fmt.Errorf("side effect error: %w", err)
		}
	}

	if fn := config.responder; fn != nil {
		return fn(query, params)
	}

	table, ok := config.responses[query]
	if !ok {
		table = config.defaultResponse
	}
	if table == nil {
		return builders.NewResponse(), nil
	}

	return builders.NewResponse(table), nil
}

func (d *driver) Close() {
	d.adapter.mu.Lock()
	defer d.adapter.mu.Unlock()
	d.adapter.closes++
}

var _ core.Adapter = (*Adapter)(nil)

// Adapter is an in-memory adapter that answers queries with canned tables.
type Adapter struct {
	config *adapterConfig

	mu              sync.Mutex
	authentications map[string]int
	connects        int
	closes          int
	calls           []Call
}

func NewAdapter(opts ...AdapterOption) *Adapter {
	config := &adapterConfig{
		querySideEffects: make(map[string]func(context.Context, string, []core.QueryParam) error),
		responses:        make(map[string]*core.ResultTable),
		authErrors:       make(map[string]error),
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Adapter{
		config:          config,
		authentications: make(map[string]int),
	}
}

func (a *Adapter) Authenticate(cluster string) (*core.ConnectionContext, error) {
	if err, ok := a.config.authErrors[cluster]; ok {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.authentications[cluster]++

	return core.NewConnectionContext(cluster, fmt.Sprintf("mock-credential:%s:%d", cluster, a.authentications[cluster])), nil
}

func (a *Adapter) Connect(connCtx *core.ConnectionContext) (core.Driver, error) {
	if a.config.connectError != nil {
		return nil, a.config.connectError
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.connects++

	return &driver{
		cluster: connCtx.Cluster(),
		adapter: a,
	}, nil
}

func (a *Adapter) record(c Call) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, c)
}

// Authentications returns how many times the cluster was authenticated.
func (a *Adapter) Authentications(cluster string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authentications[cluster]
}

func (a *Adapter) Connects() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connects
}

func (a *Adapter) Closes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closes
}

// Calls returns every query received so far in order.
func (a *Adapter) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Call, len(a.calls))
	copy(out, a.calls)
	return out
}
