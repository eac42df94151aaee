package core

import (
	"errors"
	"fmt"
	"slices"
)

var ErrRowLength = func(got, want int) error {
	return fmt.Errorf("row has %d values, table has %d columns", got, want)
}

// Table is the column-major form of a result table.
type Table struct {
	columns []string
	values  map[string][]any
	length  int
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	t := &Table{
		columns: slices.Clone(columns),
		values:  make(map[string][]any, len(columns)),
	}
	for _, c := range columns {
		t.values[c] = []any{}
	}
	return t
}

// TableFromResult converts a columnar result into a Table. Values are read
// column by column in declared order and passed through verbatim.
func TableFromResult(rt *ResultTable) (*Table, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: nil result table", ErrConversion)
	}

	t := &Table{
		columns: make([]string, 0, len(rt.Columns)),
		values:  make(map[string][]any, len(rt.Columns)),
		length:  len(rt.Rows),
	}

	for _, col := range rt.Columns {
		if _, ok := t.values[col.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrConversion, col.Name)
		}

		values := make([]any, len(rt.Rows))
		for i, row := range rt.Rows {
			val, ok := row[col.Name]
			if !ok {
				return nil, ErrMissingColumn(i, col.Name)
			}
			values[i] = val
		}

		t.columns = append(t.columns, col.Name)
		t.values[col.Name] = values
	}

	return t, nil
}

// AppendRow appends a row with one value per column in column order.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return ErrRowLength(len(values), len(t.columns))
	}

	for i, c := range t.columns {
		t.values[c] = append(t.values[c], values[i])
	}
	t.length++

	return nil
}

func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Column returns the values of a column. The returned slice must not be modified.
func (t *Table) Column(name string) ([]any, bool) {
	values, ok := t.values[name]
	return values, ok
}

// Value returns the i-th value of a column.
func (t *Table) Value(column string, i int) (any, error) {
	values, ok := t.values[column]
	if !ok {
		return nil, fmt.Errorf("%w: column %q", ErrNotFound, column)
	}
	if i < 0 || i >= len(values) {
		return nil, ErrColumnOutOfRange(column, i, len(values))
	}
	return values[i], nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.length
}

func (t *Table) Header() Header {
	return Header(t.Columns())
}

// Rows returns the row-major view of the table.
func (t *Table) Rows() []Row {
	rows := make([]Row, t.length)
	for i := range rows {
		row := make(Row, len(t.columns))
		for j, c := range t.columns {
			row[j] = t.values[c][i]
		}
		rows[i] = row
	}
	return rows
}

func (t *Table) Format(formatter Formatter, opts *FormatterOptions) ([]byte, error) {
	if formatter == nil {
		return nil, errors.New("no formatter provided")
	}
	if opts == nil {
		opts = &FormatterOptions{}
	}

	f, err := formatter.Format(t.Header(), t.Rows(), opts)
	if err != nil {
		return nil, fmt.Errorf("formatter.Format: %w", err)
	}

	return f, nil
}
