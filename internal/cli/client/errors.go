package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrReviewNotFound means the signed-in user has not reviewed the restaurant yet
	ErrReviewNotFound = errors.New("review not found")
)

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s failed (status %d)", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed (status %d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// AuthFailure reports whether the backend rejected the credential
func (e *APIError) AuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsStatus reports whether err carries the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// PlacesStatusError is a places provider answer whose status is not OK
type PlacesStatusError struct {
	Status  string
	Message string
}

func (e *PlacesStatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Search failed: %s", e.Status)
}

func placesStatusErr(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	default:
		return &PlacesStatusError{Status: status, Message: message}
	}
}
