// Package apperr defines the error taxonomy shared by every domain service.
// Repositories and services wrap these sentinels with fmt.Errorf("...: %w", ...)
// so handlers can map any error chain to an HTTP status with HTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks an unknown clinic, partnership or referral id.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate active partnership for an unordered pair.
	ErrConflict = errors.New("conflict")
	// ErrBadRequest marks a violated precondition or malformed constraint set.
	ErrBadRequest = errors.New("bad request")
	// ErrInternal marks a storage or downstream failure.
	ErrInternal = errors.New("internal error")
)

func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func BadRequest(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrBadRequest)...)
}

func Internal(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInternal)...)
}

// HTTPStatus maps an error chain to its HTTP status code.
// Unclassified errors are treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
