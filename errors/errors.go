// Package errors defines the failure taxonomy shared by every layer.
// Sentinels are matched with errors.Is; layers add context with %w wrapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated rejects a missing, malformed or expired credential.
	// Fatal to the connection attempt that carried it, never retried here.
	ErrUnauthenticated = fmt.Errorf("unauthenticated")

	// ErrForbidden rejects an action attempted by a non-owning party.
	ErrForbidden = fmt.Errorf("forbidden")

	// ErrNotFound rejects an operation on an id that does not exist.
	ErrNotFound = fmt.Errorf("not found")

	// ErrConflict reports a concurrent duplicate-write race detected by the
	// storage layer after local recovery was exhausted.
	ErrConflict = fmt.Errorf("conflict")

	// ErrTransient reports a storage hiccup on a pull or write path.
	// The caller owns the retry policy.
	ErrTransient = fmt.Errorf("transient storage failure")

	// ErrInvalidPayload rejects a request body that failed validation.
	ErrInvalidPayload = fmt.Errorf("invalid payload")
)

// HTTPStatus maps a sentinel (possibly wrapped) to the status code the
// transport edge should answer with. Unknown errors are treated as transient.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
