package format

import (
	"encoding/json"
	"fmt"

	"github.com/sliops/kqlframe/core"
)

var _ core.Formatter = (*JSON)(nil)

type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (jf *JSON) parseSchemaFul(header core.Header, rows []core.Row, opts *core.FormatterOptions) []map[string]any {
	data := []map[string]any{}

	for i, row := range rows {
		record := make(map[string]any, len(row)+1)
		for j, val := range row {
			var h string
			if j < len(header) {
				h = header[j]
			} else {
				h = fmt.Sprintf("<unknown-field-%d>", j)
			}
			record[h] = val
		}
		if opts.Index {
			record["_index"] = opts.ChunkStart + i
		}
		data = append(data, record)
	}

	return data
}

func (jf *JSON) Format(header core.Header, rows []core.Row, opts *core.FormatterOptions) ([]byte, error) {
	if opts == nil {
		opts = &core.FormatterOptions{}
	}

	out, err := json.MarshalIndent(jf.parseSchemaFul(header, rows, opts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json.MarshalIndent: %w", err)
	}

	return out, nil
}
