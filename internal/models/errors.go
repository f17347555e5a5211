package models

import (
	"errors"
	"fmt"
)

// ErrAuth indicates the remote API rejected the configured credentials
var ErrAuth = errors.New("authentication rejected")

// ErrNotFound indicates the requested resource does not exist on the remote
var ErrNotFound = errors.New("not found")

// StatusError carries a non-2xx HTTP status from a vendor API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}

// Is maps 401/403 to ErrAuth and 404 to ErrNotFound so callers can
// classify failures with errors.Is
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuth:
		return e.StatusCode == 401 || e.StatusCode == 403
	case ErrNotFound:
		return e.StatusCode == 404
	}
	return false
}
