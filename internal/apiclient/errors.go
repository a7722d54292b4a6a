package apiclient

import (
	"errors"
	"fmt"

	"github.com/vcscsvcscs/dental-console/pkg/model"
)

var (
	// ErrNoToken is returned before any request when no session token is present
	ErrNoToken = errors.New("missing auth token")
	// ErrSessionExpired is returned when the backend answers 401
	ErrSessionExpired = errors.New("session expired")
	// ErrForbidden is returned when the backend answers 403
	ErrForbidden = errors.New("forbidden")
)

// Messages shown to the user for session and permission failures
const (
	SessionExpiredMessage = "Session expired. Please log in again."
	ForbiddenMessage      = "You do not have permission for this view."
	ConflictFallback      = "Time slot conflict."
)

// TransportError wraps a failure to reach the backend at all
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	// Message comes from the body's message field, the text body, or a status fallback
	Message string
	// JSON reports whether the body was parsed as JSON
	JSON bool
	Body []byte
	// Sentinel is ErrSessionExpired or ErrForbidden for 401 and 403
	Sentinel error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

// ConflictError is a 409 carrying conflict:true; it is recoverable by choosing a suggested slot
type ConflictError struct {
	Message        string
	SuggestedSlots []model.SuggestedSlot
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return ConflictFallback
	}
	return e.Message
}

// Describe turns any error from this package into the message a screen shows.
// fallback is used for transport failures and unknown errors.
func Describe(err error, fallback string) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrNoToken) || errors.Is(err, ErrSessionExpired) {
		return SessionExpiredMessage
	}
	if errors.Is(err, ErrForbidden) {
		return ForbiddenMessage
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		if conflict.Message != "" {
			return conflict.Message
		}
		return ConflictFallback
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}

	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return 409
	}
	return 0
}
