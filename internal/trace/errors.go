package trace

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrMalformedTrace is matched by every ingestion failure.
	ErrMalformedTrace = errors.New("malformed trace")
	// ErrEmptyTrace is returned when a span is requested from a table without records.
	ErrEmptyTrace = errors.New("trace has no records")
)

// RowError describes a single rejected input row.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// MalformedTraceError collects every rejected row of one Load call.
type MalformedTraceError struct {
	Rows *multierror.Error
}

func (e *MalformedTraceError) Error() string {
	return fmt.Sprintf("%s: %d invalid row(s): %v", ErrMalformedTrace, e.Rows.Len(), e.Rows.Errors[0])
}

func (e *MalformedTraceError) Is(target error) bool {
	return target == ErrMalformedTrace
}

func (e *MalformedTraceError) Unwrap() error {
	return e.Rows.ErrorOrNil()
}

// RowErrors returns the individual row failures in input order.
func (e *MalformedTraceError) RowErrors() []*RowError {
	out := make([]*RowError, 0, e.Rows.Len())
	for _, err := range e.Rows.Errors {
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			out = append(out, rowErr)
		}
	}
	return out
}
