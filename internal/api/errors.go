package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for API client operations. Check with errors.Is.
var (
	// ErrAuthExpired is returned on HTTP 401. The stored token has
	// already been cleared when this is returned; callers should send
	// the user back to login instead of showing a generic error.
	ErrAuthExpired = errors.New("api: authentication expired")

	// ErrNoToken is returned when no auth token is available.
	ErrNoToken = errors.New("api: not logged in")
)

// HTTPError is a non-2xx response, optionally carrying the backend's
// detail string.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: http %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: http %d", e.Status)
}
