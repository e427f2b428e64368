package domain

import (
	"errors"
	"fmt"
)

// Row-scoped failures. These never abort a batch.
var (
	ErrMalformedTemporalValue = errors.New("malformed temporal value")
	ErrWorkerNotFound         = errors.New("worker not found")
	ErrIncompleteRow          = errors.New("incomplete data")
	ErrUnexpectedRow          = errors.New("row processing error")
)

// Batch-fatal failures, raised before any row is processed.
var (
	ErrEmptyUpload      = errors.New("upload contains no rows")
	ErrUnreadableUpload = errors.New("upload could not be read")
	ErrMissingColumn    = errors.New("required column missing")
)

// RowError is the failure of a single input row.
type RowError struct {
	Row      int
	WorkerID string
	Kind     error
	Err      error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d (%s): %s: %v", e.Row, e.WorkerID, e.Reason(), e.Err)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.WorkerID, e.Reason())
}

func (e *RowError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Reason is the short human-readable message surfaced in reports.
func (e *RowError) Reason() string {
	if errors.Is(e.Kind, ErrMalformedTemporalValue) {
		return "date/time parse error"
	}
	return e.Kind.Error()
}

// Failure converts the error into its report entry.
func (e *RowError) Failure() RowFailure {
	id := e.WorkerID
	if id == "" {
		id = UnknownWorker
	}
	return RowFailure{WorkerID: id, Error: e.Reason(), Row: e.Row}
}

// IsRowError reports whether err is scoped to a single row.
func IsRowError(err error) bool {
	return errors.Is(err, ErrMalformedTemporalValue) ||
		errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrIncompleteRow) ||
		errors.Is(err, ErrUnexpectedRow)
}

// IsBatchError reports whether err prevents a batch from starting.
func IsBatchError(err error) bool {
	return errors.Is(err, ErrEmptyUpload) ||
		errors.Is(err, ErrUnreadableUpload) ||
		errors.Is(err, ErrMissingColumn)
}
