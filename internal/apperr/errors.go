package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("access denied")
	ErrTooManyItems     = errors.New("too many items in batch")
	ErrNoFieldsToChange = errors.New("no fields to change")
)

// ValidationError carries every problem found in one validation pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Validation returns nil when no problems were collected.
func Validation(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// StoreError wraps an unclassified data-store failure. The boundary
// redacts Err outside development.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store failure in %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err unless it is already classified.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var se *StoreError
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) || errors.Is(err, ErrTooManyItems) ||
		errors.Is(err, ErrNoFieldsToChange) || errors.As(err, &ve) || errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// HTTPStatus maps a domain error to the status code written at the
// boundary. Unknown errors read as store failures.
func HTTPStatus(err error) int {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManyItems), errors.Is(err, ErrNoFieldsToChange):
		return http.StatusBadRequest
	case errors.As(err, &ve):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
