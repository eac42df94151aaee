package core

import (
	"errors"
	"fmt"
)

var ErrEmptyIdentityField = errors.New("cluster and database must not be empty")

// ClientIdentity identifies a registered client by its (cluster, database) pair.
// It is comparable and is used directly as a map key.
type ClientIdentity struct {
	Cluster  string
	Database string
}

func NewClientIdentity(cluster, database string) (ClientIdentity, error) {
	if cluster == "" || database == "" {
		return ClientIdentity{}, fmt.Errorf("%w: got %q:%q", ErrEmptyIdentityField, cluster, database)
	}

	return ClientIdentity{
		Cluster:  cluster,
		Database: database,
	}, nil
}

// SetCluster replaces the cluster of the identity.
// Callers must not mutate an identity that is in use as a lookup key.
func (id *ClientIdentity) SetCluster(cluster string) {
	id.Cluster = cluster
}

// SetDatabase replaces the database of the identity.
// Callers must not mutate an identity that is in use as a lookup key.
func (id *ClientIdentity) SetDatabase(database string) {
	id.Database = database
}

func (id ClientIdentity) String() string {
	return id.Cluster + ":" + id.Database
}
