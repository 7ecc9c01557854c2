package errors

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// maxBodyInError bounds how much of a response body is kept in an APIError.
const maxBodyInError = 512

// ErrMissingConfig reports a required configuration value that was not provided.
var ErrMissingConfig = errors.New("missing required configuration")

// APIError is returned when a remote API answers with a non-2xx status.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status code %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status code %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// NewAPIError builds an APIError, truncating the body on a rune boundary.
func NewAPIError(method, url string, statusCode int, body string) *APIError {
	if len(body) > maxBodyInError {
		cut := maxBodyInError
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return &APIError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Body:       body,
	}
}

// IsStatus reports whether err is an APIError carrying the given status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}

// CommandError represents a failed command together with the process exit code it maps to.
type CommandError struct {
	ExitCode int
	Err      error
}

// Error implements the error interface, returning the message from the wrapped error.
func (e *CommandError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError instance.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode: code,
		Err:      err,
	}
}

// ExitCode extracts the exit code carried by err, defaulting to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return 1
}
