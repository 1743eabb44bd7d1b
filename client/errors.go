package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Sentinel errors for conditions callers branch on.
var (
	// ErrNotFound is returned when the backend answers 404. "Missing" is a
	// distinct condition from "still loading" and must be surfaced as such.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned on 401 responses, after the global
	// unauthorized hook has run.
	ErrUnauthorized = errors.New("unauthorized")
)

// NetworkErrorMessage is the generic user-facing message for transport
// failures where no backend payload is available.
const NetworkErrorMessage = "Cannot reach the server. Check your connection and try again."

// APIError is a normalized backend error response. The backend reports
// human-readable failures in a {"detail": ...} payload, with
// {"message": ...} as a legacy variant.
type APIError struct {
	Status  int    `json:"-"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
	}
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, http.StatusText(e.Status))
}

// Is maps well-known statuses onto the package sentinels so callers can
// use errors.Is without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// ErrorMessage converts any error coming out of a client operation into a
// single user-facing message. Backend detail messages are surfaced
// verbatim; transport failures collapse to a generic network message;
// everything else falls back to the given default. Views must never see
// raw transport errors.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NetworkErrorMessage
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NetworkErrorMessage
	}

	return fallback
}
