package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is returned when authentication or transport fails.
	ErrConnection = errors.New("connection error")
	// ErrQuery is returned when the remote service rejects the query.
	ErrQuery = errors.New("query error")
	// ErrConversion is returned when a response does not have the expected shape.
	ErrConversion = errors.New("conversion error")
	// ErrNotFound is returned when an identity or a lookup key is absent.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousLookup is returned when a lookup key matches more than once.
	ErrAmbiguousLookup = errors.New("ambiguous lookup")
)

var (
	ErrIdentityNotFound = func(id ClientIdentity) error {
		return fmt.Errorf("%w: no client registered for %s", ErrNotFound, id)
	}
	ErrMissingColumn = func(row int, column string) error {
		return fmt.Errorf("%w: row %d has no value for column %q", ErrConversion, row, column)
	}
	ErrColumnOutOfRange = func(column string, index, length int) error {
		return fmt.Errorf("index %d out of range for column %q of length %d", index, column, length)
	}
)

// classify wraps err with kind unless it already carries one of the known kinds.
func classify(err error, kind error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrConnection, ErrQuery, ErrConversion, ErrNotFound, ErrAmbiguousLookup} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", kind, err)
}
