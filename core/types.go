package core

import (
	"context"
)

type (
	// FormatterOptions provide various options for formatters
	FormatterOptions struct {
		// include an explicit row index column
		Index bool
		// index of the first row passed to the formatter
		ChunkStart int
	}

	// Formatter converts header and rows to bytes
	Formatter interface {
		Format(header Header, rows []Row, opts *FormatterOptions) ([]byte, error)
	}
)

type (
	// Row and Header are the row-major view of a Table
	Row    []any
	Header []string
)

type (
	// Adapter authenticates against a cluster and opens drivers for it.
	Adapter interface {
		// Authenticate creates the connection context for a cluster. It is called
		// once per cluster and the result is reused for every query.
		Authenticate(cluster string) (*ConnectionContext, error)
		// Connect opens a driver scoped to a single query.
		Connect(connCtx *ConnectionContext) (Driver, error)
	}

	// Driver is an interface for a specific query service driver
	Driver interface {
		Query(ctx context.Context, database string, query string, params []QueryParam) (*Response, error)
		Close()
	}
)
