package backend

import (
	"errors"
	"fmt"
)

// Sentinels for the globally handled response classes. Handlers translate
// ErrUnauthorized into the unauthorized redirect and ErrNotFound into the
// not-found redirect; everything else propagates to the call site unchanged.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// StatusError carries a non-2xx response that is not globally handled, so
// the call site can surface it inline (failed logins, validation errors).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}
