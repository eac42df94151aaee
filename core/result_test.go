package core_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/core/builders"
	"github.com/sliops/kqlframe/core/mock"
)

func TestTableFromResult(t *testing.T) {
	ts := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		columns []string
		rows    []core.Row
	}

	testCases := []testCase{
		{
			name:    "mixed scalars",
			columns: []string{"Name", "Count", "Rate", "At", "Missing"},
			rows: []core.Row{
				{"first", int64(1), 0.5, ts, nil},
				{"second", int64(2), 1.5, ts.Add(time.Hour), "present"},
				{"third", int64(3), 2.5, ts.Add(2 * time.Hour), nil},
			},
		},
		{
			name:    "single column",
			columns: []string{"count_"},
			rows:    []core.Row{{int64(42)}},
		},
		{
			name:    "generated rows",
			columns: []string{"header_0", "header_1"},
			rows:    mock.NewRows(0, 25),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)

			rt := mock.NewResultTable(tc.rows, mock.ResultTableWithColumns(tc.columns...))

			table, err := core.TableFromResult(rt)
			r.NoError(err)

			r.Equal(tc.columns, table.Columns())
			r.Equal(len(tc.rows), table.Len())

			for _, col := range tc.columns {
				values, ok := table.Column(col)
				r.True(ok)
				r.Len(values, len(tc.rows))

				for i := range tc.rows {
					r.Equal(rt.Rows[i][col], values[i], fmt.Sprintf("column %q row %d", col, i))
				}
			}
		})
	}
}

func TestTableFromResult_NoRows(t *testing.T) {
	r := require.New(t)

	rt := builders.NewResultTableBuilder().
		WithColumnNames("a", "b", "c").
		Build()

	table, err := core.TableFromResult(rt)
	r.NoError(err)

	r.Equal(0, table.Len())
	r.Equal([]string{"a", "b", "c"}, table.Columns())
	for _, col := range []string{"a", "b", "c"} {
		values, ok := table.Column(col)
		r.True(ok)
		r.NotNil(values)
		r.Empty(values)
	}
}

func TestTableFromResult_Malformed(t *testing.T) {
	r := require.New(t)

	rt := builders.NewResultTableBuilder().
		WithColumnNames("a", "b").
		WithRecord(core.Record{"a": 1, "b": 2}).
		WithRecord(core.Record{"a": 3}).
		Build()

	_, err := core.TableFromResult(rt)
	r.ErrorIs(err, core.ErrConversion)
	r.ErrorContains(err, `row 1 has no value for column "b"`)

	_, err = core.TableFromResult(nil)
	r.ErrorIs(err, core.ErrConversion)
}

func TestTable_AppendRowAndRows(t *testing.T) {
	r := require.New(t)

	table := core.NewTable("low", "high")
	r.NoError(table.AppendRow(0, 10))
	r.NoError(table.AppendRow(10, 20))
	r.Error(table.AppendRow(20))

	r.Equal(2, table.Len())
	r.Equal([]core.Row{{0, 10}, {10, 20}}, table.Rows())

	val, err := table.Value("high", 1)
	r.NoError(err)
	r.Equal(20, val)

	_, err = table.Value("high", 2)
	r.Error(err)

	_, err = table.Value("nope", 0)
	r.ErrorIs(err, core.ErrNotFound)
}
