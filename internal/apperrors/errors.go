// Package apperrors defines the domain error taxonomy shared by the
// repository, service and HTTP layers. The kind names double as the
// "type" field of problem responses, so they stay stable regardless
// of the underlying driver error.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind string

const (
	// Validation: missing or malformed required field, unknown event type.
	Validation Kind = "ValidationError"
	// Duplicate: the (facilityCode, externalEventId) pair already exists.
	Duplicate Kind = "DuplicateEventError"
	// NotFound: no parent row matched the lookup key.
	NotFound Kind = "NotFoundError"
	// Consistency: more than one row matched a supposedly-unique key.
	Consistency Kind = "ConsistencyError"
	// Persistence: any other storage failure.
	Persistence Kind = "PersistenceError"
)

// Error is a classified domain error.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a formatted detail message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of a classified error. Unclassified errors
// report Persistence.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Persistence
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a domain error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Duplicate:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Consistency, Persistence:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
