package apiclient

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMethod is returned for HTTP verbs outside the supported set.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// APIError is returned when a call completes with a status of 400 or above
// after the retry budget is spent. It carries the decoded error body so
// callers can assert on it directly.
type APIError struct {
	Status     int
	StatusText string
	Method     string
	URL        string
	Data       any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s returned %d %s", e.Method, e.URL, e.Status, e.StatusText)
}
