package core

import (
	"fmt"
	"time"
)

type (
	// ColumnDescriptor describes a single column of a result table.
	ColumnDescriptor struct {
		Name    string
		Type    string
		Ordinal int
	}

	// Record is a single row addressable by column name.
	Record map[string]any

	// ResultTable is a columnar result as returned by the remote service.
	ResultTable struct {
		Name    string
		Columns []ColumnDescriptor
		Rows    []Record
	}
)

type CallID string

// Response is everything a single query execution returned.
type Response struct {
	CallID    CallID
	Identity  ClientIdentity
	Query     string
	Timestamp time.Time
	TimeTaken time.Duration

	// PrimaryResults holds the primary result tables in the order they were received.
	PrimaryResults []*ResultTable
}

// Primary returns the first primary result.
func (r *Response) Primary() (*ResultTable, error) {
	if r == nil || len(r.PrimaryResults) < 1 || r.PrimaryResults[0] == nil {
		return nil, fmt.Errorf("%w: response contains no primary result", ErrConversion)
	}
	return r.PrimaryResults[0], nil
}
