package output

import (
	"fmt"
	"strings"

	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/core/format"
)

// Output writes a formatted table somewhere.
type Output interface {
	Write(table *core.Table) error
}

// FormatterByName returns the formatter registered for a format name.
func FormatterByName(name string) (core.Formatter, error) {
	switch strings.ToLower(name) {
	case "csv":
		return format.NewCSV(), nil
	case "json":
		return format.NewJSON(), nil
	case "table", "pretty":
		return format.NewTable(), nil
	default:
		return nil, fmt.Errorf("output format %q is not supported", name)
	}
}
