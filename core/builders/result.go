package builders

import (
	"github.com/sliops/kqlframe/core"
)

// ResultTableBuilder builds columnar result tables
type ResultTableBuilder struct {
	name    string
	columns []core.ColumnDescriptor
	rows    []core.Record
}

func NewResultTableBuilder() *ResultTableBuilder {
	return &ResultTableBuilder{
		name:    "PrimaryResult",
		columns: []core.ColumnDescriptor{},
		rows:    []core.Record{},
	}
}

func (b *ResultTableBuilder) WithName(name string) *ResultTableBuilder {
	b.name = name
	return b
}

// WithColumns replaces the columns. Ordinals follow the argument order.
func (b *ResultTableBuilder) WithColumns(columns ...core.ColumnDescriptor) *ResultTableBuilder {
	b.columns = make([]core.ColumnDescriptor, len(columns))
	for i, c := range columns {
		c.Ordinal = i
		b.columns[i] = c
	}
	return b
}

// WithColumnNames is a shorthand for untyped columns.
func (b *ResultTableBuilder) WithColumnNames(names ...string) *ResultTableBuilder {
	columns := make([]core.ColumnDescriptor, len(names))
	for i, n := range names {
		columns[i] = core.ColumnDescriptor{Name: n}
	}
	return b.WithColumns(columns...)
}

// WithRecord appends a row addressed by column name.
func (b *ResultTableBuilder) WithRecord(record core.Record) *ResultTableBuilder {
	b.rows = append(b.rows, record)
	return b
}

// WithRow appends a row whose values follow the column order.
// Values beyond the number of columns are ignored and missing ones are left out.
func (b *ResultTableBuilder) WithRow(values ...any) *ResultTableBuilder {
	record := make(core.Record, len(values))
	for i, v := range values {
		if i >= len(b.columns) {
			break
		}
		record[b.columns[i].Name] = v
	}
	return b.WithRecord(record)
}

// Reset drops the rows collected so far.
func (b *ResultTableBuilder) Reset() *ResultTableBuilder {
	b.rows = []core.Record{}
	return b
}

func (b *ResultTableBuilder) Len() int {
	return len(b.rows)
}

func (b *ResultTableBuilder) Build() *core.ResultTable {
	return &core.ResultTable{
		Name:    b.name,
		Columns: b.columns,
		Rows:    b.rows,
	}
}

// NewResponse wraps tables into a response as primary results.
func NewResponse(tables ...*core.ResultTable) *core.Response {
	return &core.Response{
		PrimaryResults: tables,
	}
}
