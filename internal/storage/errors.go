package storage

import (
	"errors"
	"fmt"

	"github.com/ncruces/go-sqlite3"

	"knowstore/internal/models"
)

// ValidationError reports input that failed kind-specific validation before
// any statement was issued.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an update or delete that targeted an id with no
// matching row. Empty read results are not errors and never produce this.
type NotFoundError struct {
	Kind models.Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NoFieldsError reports an update whose patch carried no effective fields.
type NoFieldsError struct{}

func (e *NoFieldsError) Error() string {
	return "update requires at least one field"
}

// NoSelectorError reports a delete with no selection criterion at all.
type NoSelectorError struct{}

func (e *NoSelectorError) Error() string {
	return "delete requires at least one selector: id, entity_id, or an importance bound"
}

// ContentionError reports a write that could not acquire the database lock
// within the busy timeout. It is surfaced as-is and never retried here.
type ContentionError struct {
	Err error
}

func (e *ContentionError) Error() string {
	return "store is busy: " + e.Err.Error()
}

func (e *ContentionError) Unwrap() error {
	return e.Err
}

// mapBusy converts SQLITE_BUSY into a ContentionError, leaving every other
// error untouched.
func mapBusy(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sqlite3.BUSY) {
		return &ContentionError{Err: err}
	}
	return err
}
