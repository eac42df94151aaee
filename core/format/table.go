package format

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sliops/kqlframe/core"
)

var _ core.Formatter = (*Table)(nil)

// Table renders rows as a borderless terminal table.
type Table struct{}

func NewTable() *Table {
	return &Table{}
}

func (tf *Table) Format(header core.Header, rows []core.Row, opts *core.FormatterOptions) ([]byte, error) {
	if opts == nil {
		opts = &core.FormatterOptions{}
	}

	var tableHeaders table.Row
	if opts.Index {
		tableHeaders = append(tableHeaders, "")
	}
	for _, k := range header {
		tableHeaders = append(tableHeaders, k)
	}

	var tableRows []table.Row
	for i, row := range rows {
		var r table.Row
		if opts.Index {
			r = append(r, strconv.Itoa(opts.ChunkStart+i))
		}
		r = append(r, row...)
		tableRows = append(tableRows, r)
	}

	t := table.NewWriter()
	t.AppendHeader(tableHeaders)
	t.AppendRows(tableRows)
	t.AppendSeparator()
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false

	return []byte(t.Render() + "\n"), nil
}
