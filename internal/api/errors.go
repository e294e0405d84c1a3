package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// UnknownErrorMessage is used when a failed response has no body.
	UnknownErrorMessage = "An unknown error occurred."

	// TransportErrorMessage is shown when the API could not be reached.
	TransportErrorMessage = "Unable to reach the store. Please try again."

	invalidJSONMessage = "Response was not valid JSON"
)

// Error is a non-2xx response from the commerce API
type Error struct {
	StatusCode int
	Detail     string
	RequestID  string
	cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// UserMessage returns the server-supplied detail verbatim.
func (e *Error) UserMessage() string {
	return e.Detail
}

// TransportError means no HTTP response was obtained
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) UserMessage() string {
	return TransportErrorMessage
}

// IsUnauthorized reports whether err is an authentication rejection.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsTransport reports whether err happened before a response was received.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// parseDetail renders the "detail" member of an error body. FastAPI sends
// either a string or a list of validation entries.
func parseDetail(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return string(raw)
}
