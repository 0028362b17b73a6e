package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthRequired     = errors.New("authorization required")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
)

// StatusError covers non-2xx responses outside the mapped taxonomy.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// FromStatus maps an HTTP status to the client error taxonomy.
// The body is carried along so server messages surface verbatim.
func FromStatus(code int, body string) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrAuthRequired
	case http.StatusForbidden:
		if body != "" {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, body)
		}
		return ErrPermissionDenied
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return &StatusError{Code: code, Body: body}
	}
}
