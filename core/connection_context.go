package core

import "time"

// ConnectionContext is the authentication context bound to a single cluster.
// It is produced once by Adapter.Authenticate and never modified afterwards.
type ConnectionContext struct {
	cluster    string
	credential any
	createdAt  time.Time
}

// NewConnectionContext is used by adapters to wrap their credential type.
func NewConnectionContext(cluster string, credential any) *ConnectionContext {
	return &ConnectionContext{
		cluster:    cluster,
		credential: credential,
		createdAt:  time.Now(),
	}
}

func (c *ConnectionContext) Cluster() string {
	return c.cluster
}

// Credential returns the adapter specific credential.
func (c *ConnectionContext) Credential() any {
	return c.credential
}

func (c *ConnectionContext) CreatedAt() time.Time {
	return c.createdAt
}
