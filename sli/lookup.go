package sli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/sliops/kqlframe/core"
)

const (
	signalIDColumn    = "SliId"
	serviceNameColumn = "ServiceName"
)

var ErrMissingLookupColumn = func(column string) error {
	return fmt.Errorf("lookup table has no %q column", column)
}

// ServiceMap maps signal ids to service names.
type ServiceMap struct {
	entries map[string][]string
}

// LoadServiceMap reads a csv file with a header row that contains at least
// the SliId and ServiceName columns.
func LoadServiceMap(path string) (*ServiceMap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer file.Close()

	return ParseServiceMap(file)
}

func ParseServiceMap(r io.Reader) (*ServiceMap, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("lookup table is empty")
		}
		return nil, fmt.Errorf("reader.Read: %w", err)
	}

	idIdx := slices.Index(header, signalIDColumn)
	if idIdx < 0 {
		return nil, ErrMissingLookupColumn(signalIDColumn)
	}
	nameIdx := slices.Index(header, serviceNameColumn)
	if nameIdx < 0 {
		return nil, ErrMissingLookupColumn(serviceNameColumn)
	}

	m := &ServiceMap{
		entries: make(map[string][]string),
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reader.Read: %w", err)
		}
		if idIdx >= len(record) || nameIdx >= len(record) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("lookup table line %d: expected at least %d fields, got %d", line, max(idIdx, nameIdx)+1, len(record))
		}

		id := record[idIdx]
		m.entries[id] = append(m.entries[id], record[nameIdx])
	}

	return m, nil
}

// Resolve returns the service name of a signal. Zero matches fail with
// ErrNotFound and more than one match fails with ErrAmbiguousLookup.
func (m *ServiceMap) Resolve(signal string) (string, error) {
	names := m.entries[signal]

	switch len(names) {
	case 0:
		return "", fmt.Errorf("%w: no service name for signal %q", core.ErrNotFound, signal)
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("%w: signal %q maps to %d service names %q", core.ErrAmbiguousLookup, signal, len(names), names)
	}
}

// Len returns the number of distinct signals.
func (m *ServiceMap) Len() int {
	return len(m.entries)
}
