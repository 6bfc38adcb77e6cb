package gist

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Sentinel errors for gist resolution.
var (
	// ErrInvalidURI indicates a gist: reference that does not parse into a locator.
	ErrInvalidURI = errors.New("invalid gist URI")

	// ErrNotFound indicates the remote gist does not exist (HTTP 404).
	ErrNotFound = errors.New("gist not found")

	// ErrRemoteServer indicates the gist service failed (HTTP 5xx).
	ErrRemoteServer = errors.New("gist server error")

	// ErrUnsupportedResponse indicates any other non-200 status.
	ErrUnsupportedResponse = errors.New("unsupported gist response")

	// ErrInvalidResponse indicates a 200 response whose body could not be decoded.
	ErrInvalidResponse = errors.New("invalid gist response body")

	// ErrMalformedFragment indicates the gist markup is not exactly one root element.
	ErrMalformedFragment = errors.New("malformed gist fragment")
)

// ResponseError describes a non-200 answer from the gist service.
// It unwraps to ErrNotFound, ErrRemoteServer or ErrUnsupportedResponse.
type ResponseError struct {
	URL        string
	StatusCode int
	Status     string // status text, e.g. "Not Found"
	Err        error
}

func (e *ResponseError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNotFound):
		return fmt.Sprintf("%v at URL: %s", e.Err, e.URL)
	case errors.Is(e.Err, ErrRemoteServer):
		return fmt.Sprintf("%v: %d %s (%s)", e.Err, e.StatusCode, e.Status, e.URL)
	default:
		return fmt.Sprintf("%v: %d - %s (%s)", e.Err, e.StatusCode, e.Status, e.URL)
	}
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-200 status to its response error. status is the
// status line as received ("404 Not Found"); its reason phrase is kept, and
// the standard text for code is used when the server sent none.
func classifyStatus(url string, code int, status string) *ResponseError {
	err := &ResponseError{
		URL:        url,
		StatusCode: code,
		Status:     reasonPhrase(code, status),
	}
	switch {
	case code == http.StatusNotFound:
		err.Err = ErrNotFound
	case code >= 500 && code <= 599:
		err.Err = ErrRemoteServer
	default:
		err.Err = ErrUnsupportedResponse
	}
	return err
}

// reasonPhrase strips the leading code from a status line.
func reasonPhrase(code int, status string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if reason == "" {
		return http.StatusText(code)
	}
	return reason
}
