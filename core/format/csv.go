package format

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/sliops/kqlframe/core"
)

var _ core.Formatter = (*CSV)(nil)

type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func csvValue(rec any) string {
	switch v := rec.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

func (cf *CSV) parseSchemaFul(header core.Header, rows []core.Row, opts *core.FormatterOptions) [][]string {
	head := []string(header)
	if opts.Index {
		head = append([]string{""}, head...)
	}

	data := [][]string{
		head,
	}
	for i, row := range rows {
		var csvRow []string
		if opts.Index {
			csvRow = append(csvRow, strconv.Itoa(opts.ChunkStart+i))
		}
		for _, rec := range row {
			csvRow = append(csvRow, csvValue(rec))
		}
		data = append(data, csvRow)
	}

	return data
}

func (cf *CSV) Format(header core.Header, rows []core.Row, opts *core.FormatterOptions) ([]byte, error) {
	if opts == nil {
		opts = &core.FormatterOptions{}
	}

	data := cf.parseSchemaFul(header, rows, opts)

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	err := w.WriteAll(data)
	if err != nil {
		return nil, fmt.Errorf("w.WriteAll: %w", err)
	}

	return b.Bytes(), nil
}
