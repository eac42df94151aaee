package output_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/output"
)

func sampleTable(t *testing.T) *core.Table {
	table := core.NewTable("low_sparse_rate", "high_sparse_rate", "fp_count", "tp_count")
	require.NoError(t, table.AppendRow(0, 10, int64(3), int64(5)))
	require.NoError(t, table.AppendRow(10, 20, int64(1), nil))
	return table
}

func TestFile_CSVWithIndex(t *testing.T) {
	r := require.New(t)

	formatter, err := output.FormatterByName("csv")
	r.NoError(err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	path := filepath.Join(t.TempDir(), "re_sparse.csv")
	err = output.NewFile(path, formatter, &core.FormatterOptions{Index: true}, logger).Write(sampleTable(t))
	r.NoError(err)

	content, err := os.ReadFile(path)
	r.NoError(err)
	r.Equal(",low_sparse_rate,high_sparse_rate,fp_count,tp_count\n0,0,10,3,5\n1,10,20,1,\n", string(content))
}

func TestWriter_JSON(t *testing.T) {
	r := require.New(t)

	formatter, err := output.FormatterByName("JSON")
	r.NoError(err)

	var buf bytes.Buffer
	r.NoError(output.NewWriter(&buf, formatter, nil).Write(sampleTable(t)))
	r.JSONEq(`[
		{"low_sparse_rate": 0, "high_sparse_rate": 10, "fp_count": 3, "tp_count": 5},
		{"low_sparse_rate": 10, "high_sparse_rate": 20, "fp_count": 1, "tp_count": null}
	]`, buf.String())
}

func TestWriter_Table(t *testing.T) {
	r := require.New(t)

	formatter, err := output.FormatterByName("table")
	r.NoError(err)

	var buf bytes.Buffer
	r.NoError(output.NewWriter(&buf, formatter, &core.FormatterOptions{Index: true}).Write(sampleTable(t)))
	r.Contains(buf.String(), "low_sparse_rate")
	r.Contains(buf.String(), "fp_count")

	_, err = output.FormatterByName("xml")
	r.Error(err)
}
