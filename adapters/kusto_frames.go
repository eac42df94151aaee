package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-kusto-go/kusto/data/types"
	"github.com/google/uuid"

	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/core/builders"
)

const (
	frameDataTable         = "DataTable"
	frameTableHeader       = "TableHeader"
	frameTableFragment     = "TableFragment"
	frameDataSetCompletion = "DataSetCompletion"

	kindPrimaryResult = "PrimaryResult"
	fragmentReplace   = "DataReplace"
)

type (
	frameColumn struct {
		ColumnName string `json:"ColumnName"`
		ColumnType string `json:"ColumnType"`
	}

	// frame is the union of the v2 response frames this driver reads.
	frame struct {
		FrameType         string            `json:"FrameType"`
		TableID           int               `json:"TableId"`
		TableName         string            `json:"TableName"`
		TableKind         string            `json:"TableKind"`
		TableFragmentType string            `json:"TableFragmentType"`
		Columns           []frameColumn     `json:"Columns"`
		Rows              []json.RawMessage `json:"Rows"`
		HasErrors         bool              `json:"HasErrors"`
		OneAPIErrors      []oneAPIError     `json:"OneApiErrors"`
	}

	oneAPIError struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	inlineError struct {
		OneAPIErrors []oneAPIError `json:"OneApiErrors"`
	}
)

func oneAPIErrorsString(errs []oneAPIError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error.Code + ": " + e.Error.Message
	}
	return strings.Join(msgs, "; ")
}

// primaryDecoder collects the first primary result out of a stream of frames.
type primaryDecoder struct {
	b       *builders.ResultTableBuilder
	columns []frameColumn
	tableID int
	found   bool
}

// decodePrimaryResult reads a v2 query response and returns its first primary
// result. Columns come from the table frame, so they are known without rows.
func decodePrimaryResult(r io.Reader) (*core.ResultTable, error) {
	var frames []frame
	if err := json.NewDecoder(r).Decode(&frames); err != nil {
		return nil, fmt.Errorf("%w: decoding response frames: %w", core.ErrConversion, err)
	}

	d := &primaryDecoder{
		b: builders.NewResultTableBuilder(),
	}

	for _, f := range frames {
		switch f.FrameType {
		case frameDataTable:
			if d.found || f.TableKind != kindPrimaryResult {
				continue
			}
			d.start(f)
			if err := d.appendRows(f.Rows); err != nil {
				return nil, err
			}
		case frameTableHeader:
			if d.found || f.TableKind != kindPrimaryResult {
				continue
			}
			d.start(f)
		case frameTableFragment:
			if !d.found || f.TableID != d.tableID {
				continue
			}
			if f.TableFragmentType == fragmentReplace {
				d.b.Reset()
			}
			if err := d.appendRows(f.Rows); err != nil {
				return nil, err
			}
		case frameDataSetCompletion:
			if f.HasErrors {
				return nil, fmt.Errorf("%w: %s", core.ErrQuery, oneAPIErrorsString(f.OneAPIErrors))
			}
		}
	}

	if !d.found {
		return nil, fmt.Errorf("%w: response contains no primary result", core.ErrConversion)
	}

	return d.b.Build(), nil
}

func (d *primaryDecoder) start(f frame) {
	d.found = true
	d.tableID = f.TableID
	d.columns = f.Columns

	columns := make([]core.ColumnDescriptor, len(f.Columns))
	for i, c := range f.Columns {
		columns[i] = core.ColumnDescriptor{Name: c.ColumnName, Type: c.ColumnType}
	}
	d.b.WithName(f.TableName).WithColumns(columns...)
}

func (d *primaryDecoder) appendRows(rows []json.RawMessage) error {
	for _, raw := range rows {
		raw = bytes.TrimSpace(raw)

		// a failure half way through the result arrives as an object in place of a row
		if len(raw) > 0 && raw[0] == '{' {
			var ie inlineError
			if err := json.Unmarshal(raw, &ie); err != nil {
				return fmt.Errorf("%w: row %d: %w", core.ErrConversion, d.b.Len(), err)
			}
			return fmt.Errorf("%w: %s", core.ErrQuery, oneAPIErrorsString(ie.OneAPIErrors))
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()

		var values []any
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("%w: row %d: %w", core.ErrConversion, d.b.Len(), err)
		}
		if len(values) != len(d.columns) {
			return fmt.Errorf("%w: row %d has %d values, table has %d columns", core.ErrConversion, d.b.Len(), len(values), len(d.columns))
		}

		record := make(core.Record, len(values))
		for j, v := range values {
			val, err := decodeValue(types.Column(d.columns[j].ColumnType), v)
			if err != nil {
				return fmt.Errorf("%w: row %d column %q: %w", core.ErrConversion, d.b.Len(), d.columns[j].ColumnName, err)
			}
			record[d.columns[j].ColumnName] = val
		}
		d.b.WithRecord(record)
	}

	return nil
}

// decodeValue turns a json value of a typed column into a plain go scalar.
// Nulls become nil.
func decodeValue(typ types.Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch typ {
	case types.Long:
		n, err := jsonNumber(v).Int64()
		if err != nil {
			return nil, err
		}
		return n, nil
	case types.Int:
		n, err := strconv.ParseInt(jsonNumber(v).String(), 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case types.Real:
		return decodeReal(v)
	case types.Decimal:
		return fmt.Sprint(v), nil
	case types.Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		return b, nil
	case types.DateTime:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected datetime string, got %T", v)
		}
		return time.Parse(time.RFC3339Nano, s)
	case types.Timespan:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected timespan string, got %T", v)
		}
		return parseTimespan(s)
	case types.GUID:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected guid string, got %T", v)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	default:
		// string and dynamic values are passed through as decoded
		return v, nil
	}
}

func jsonNumber(v any) json.Number {
	switch n := v.(type) {
	case json.Number:
		return n
	case string:
		return json.Number(n)
	default:
		return json.Number(fmt.Sprint(v))
	}
}

func decodeReal(v any) (float64, error) {
	if s, ok := v.(string); ok {
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}
	return jsonNumber(v).Float64()
}

// parseTimespan parses the [-][d.]hh:mm:ss[.fffffff] form.
func parseTimespan(s string) (time.Duration, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	colon := strings.Index(s, ":")
	if colon < 0 {
		return 0, fmt.Errorf("invalid timespan %q", orig)
	}

	var days int64
	if dot := strings.Index(s[:colon], "."); dot >= 0 {
		d, err := strconv.ParseInt(s[:dot], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timespan %q: %w", orig, err)
		}
		days = d
		s = s[dot+1:]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timespan %q", orig)
	}

	secs, frac, _ := strings.Cut(parts[2], ".")

	var fields [3]int64
	for i, p := range []string{parts[0], parts[1], secs} {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timespan %q: %w", orig, err)
		}
		fields[i] = n
	}

	var nanos int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		n, err := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timespan %q: %w", orig, err)
		}
		nanos = n
	}

	d := time.Duration(days)*24*time.Hour +
		time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second +
		time.Duration(nanos)

	if neg {
		d = -d
	}
	return d, nil
}
