package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrNoAdapter = errors.New("no adapter provided")

type clientConfig struct {
	log logrus.FieldLogger
}

type ClientOption func(*clientConfig)

// WithLogger sets the logger used by a client (and by a registry for the clients it creates).
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *clientConfig) {
		if log != nil {
			c.log = log
		}
	}
}

func newClientConfig(opts []ClientOption) *clientConfig {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	config := &clientConfig{
		log: discard,
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Client executes queries against a single (cluster, database) pair.
type Client struct {
	connCtx  *ConnectionContext
	database string
	adapter  Adapter
	log      logrus.FieldLogger
}

// NewClient creates a client bound to the cluster of connCtx.
func NewClient(connCtx *ConnectionContext, database string, adapter Adapter, opts ...ClientOption) (*Client, error) {
	if adapter == nil {
		return nil, ErrNoAdapter
	}
	if connCtx == nil {
		return nil, fmt.Errorf("%w: nil connection context", ErrConnection)
	}
	if _, err := NewClientIdentity(connCtx.Cluster(), database); err != nil {
		return nil, err
	}

	config := newClientConfig(opts)

	return &Client{
		connCtx:  connCtx,
		database: database,
		adapter:  adapter,
		log:      config.log,
	}, nil
}

// Dial authenticates against cluster and creates a client for it.
func Dial(cluster, database string, adapter Adapter, opts ...ClientOption) (*Client, error) {
	if adapter == nil {
		return nil, ErrNoAdapter
	}
	if _, err := NewClientIdentity(cluster, database); err != nil {
		return nil, err
	}

	connCtx, err := adapter.Authenticate(cluster)
	if err != nil {
		return nil, classify(fmt.Errorf("adapter.Authenticate: %w", err), ErrConnection)
	}

	return NewClient(connCtx, database, adapter, opts...)
}

func (c *Client) Cluster() string {
	return c.connCtx.Cluster()
}

func (c *Client) Database() string {
	return c.database
}

func (c *Client) Identity() ClientIdentity {
	return ClientIdentity{
		Cluster:  c.connCtx.Cluster(),
		Database: c.database,
	}
}

// ConnectionContext returns the authentication context the client queries with.
func (c *Client) ConnectionContext() *ConnectionContext {
	return c.connCtx
}

// SetDatabase repoints the client to another database on the same cluster.
// A client held by a Registry stays under its old key; use Registry.Repoint.
func (c *Client) SetDatabase(database string) error {
	if database == "" {
		return ErrEmptyIdentityField
	}
	c.database = database
	return nil
}

// SetCluster repoints the client to another cluster. The client re-authenticates
// and on failure stays bound to the previous cluster. A client held by a
// Registry stays under its old key; use Registry.Repoint.
func (c *Client) SetCluster(cluster string) error {
	if cluster == "" {
		return ErrEmptyIdentityField
	}
	if cluster == c.connCtx.Cluster() {
		return nil
	}

	connCtx, err := c.adapter.Authenticate(cluster)
	if err != nil {
		return classify(fmt.Errorf("adapter.Authenticate: %w", err), ErrConnection)
	}

	c.connCtx = connCtx
	return nil
}

// Execute runs a query and returns the full response. A driver is opened
// for the duration of the call and closed on every return path.
func (c *Client) Execute(ctx context.Context, query string, params ...QueryParam) (*Response, error) {
	id := CallID(uuid.New().String())
	identity := c.Identity()
	log := c.log.WithFields(logrus.Fields{
		"call_id":  id,
		"identity": identity.String(),
	})

	timestamp := time.Now()

	driver, err := c.adapter.Connect(c.connCtx)
	if err != nil {
		log.WithError(err).Error("connect failed")
		return nil, classify(fmt.Errorf("adapter.Connect: %w", err), ErrConnection)
	}
	defer driver.Close()

	log.Debug("executing query")

	resp, err := driver.Query(ctx, c.database, query, params)
	if err != nil {
		log.WithError(err).Error("query failed")
		return nil, classify(fmt.Errorf("driver.Query: %w", err), ErrQuery)
	}
	if resp == nil {
		resp = &Response{}
	}

	resp.CallID = id
	resp.Identity = identity
	resp.Query = query
	resp.Timestamp = timestamp
	resp.TimeTaken = time.Since(timestamp)

	log.WithField("took", resp.TimeTaken).Debug("query finished")

	return resp, nil
}

// ExecuteAsTable runs a query and converts its primary result to a Table.
func (c *Client) ExecuteAsTable(ctx context.Context, query string, params ...QueryParam) (*Table, error) {
	resp, err := c.Execute(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	primary, err := resp.Primary()
	if err != nil {
		return nil, err
	}

	table, err := TableFromResult(primary)
	if err != nil {
		return nil, fmt.Errorf("TableFromResult: %w", err)
	}

	return table, nil
}
