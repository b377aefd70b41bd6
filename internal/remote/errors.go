package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failed call to the store API. Status is zero when the request
// never produced a response (transport failure or cancellation).
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// StatusCode returns the remote HTTP status.
func (e *APIError) StatusCode() int { return e.Status }

// UserMessage is the text shown to the user: the server's message verbatim.
func (e *APIError) UserMessage() string { return e.Message }

// IsUnauthorized reports whether err is a 401 from the store API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Message extracts the user-facing text from any error.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
