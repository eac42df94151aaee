package mock

import (
	"fmt"

	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/core/builders"
)

func makeDefaultColumns(rows []core.Row) []string {
	var columns []string
	if len(rows) > 0 {
		for i := range rows[0] {
			columns = append(columns, fmt.Sprintf("header_%d", i))
		}
	}
	return columns
}

// NewResultTable returns a result table with provided rows.
// It creates columns that match the number of values in the first row
// in form of: <header_0>, <header_1>, etc.
func NewResultTable(rows []core.Row, opts ...ResultTableOption) *core.ResultTable {
	config := &resultTableConfig{
		columns: makeDefaultColumns(rows),
	}
	for _, opt := range opts {
		opt(config)
	}

	b := builders.NewResultTableBuilder().WithColumnNames(config.columns...)
	for _, row := range rows {
		b.WithRow(row...)
	}

	return b.Build()
}

// NewRows returns a slice of rows in form of:
//
//	{ <index>(int), "row_<index>"(string) }
//
// where the first index is "from" and the last one is one less than "to".
func NewRows(from, to int) []core.Row {
	var rows []core.Row

	for i := from; i < to; i++ {
		rows = append(rows, core.Row{i, fmt.Sprintf("row_%d", i)})
	}
	return rows
}
