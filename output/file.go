package output

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sliops/kqlframe/core"
)

var (
	_ Output = (*File)(nil)
	_ Output = (*Writer)(nil)
)

type File struct {
	fileName  string
	formatter core.Formatter
	opts      *core.FormatterOptions
	log       logrus.FieldLogger
}

func NewFile(fileName string, formatter core.Formatter, opts *core.FormatterOptions, logger logrus.FieldLogger) *File {
	return &File{
		fileName:  fileName,
		formatter: formatter,
		opts:      opts,
		log:       logger,
	}
}

func (fo *File) Write(table *core.Table) error {
	out, err := table.Format(fo.formatter, fo.opts)
	if err != nil {
		return fmt.Errorf("table.Format: %w", err)
	}

	err = os.WriteFile(fo.fileName, out, 0o644)
	if err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}

	fo.log.WithFields(logrus.Fields{
		"path": fo.fileName,
		"rows": table.Len(),
	}).Info("successfully saved result")
	return nil
}

// Writer writes the formatted table to an io.Writer, usually stdout.
type Writer struct {
	w         io.Writer
	formatter core.Formatter
	opts      *core.FormatterOptions
}

func NewWriter(w io.Writer, formatter core.Formatter, opts *core.FormatterOptions) *Writer {
	return &Writer{
		w:         w,
		formatter: formatter,
		opts:      opts,
	}
}

func (wo *Writer) Write(table *core.Table) error {
	out, err := table.Format(wo.formatter, wo.opts)
	if err != nil {
		return fmt.Errorf("table.Format: %w", err)
	}

	_, err = wo.w.Write(out)
	return err
}
