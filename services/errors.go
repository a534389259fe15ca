package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoActiveSession means no signed-in session or bearer token was
	// available; the request was never sent.
	ErrNoActiveSession = errors.New("no active session")

	// ErrUnauthorized maps HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadRequest maps HTTP 400.
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidResponse means a success status arrived with a missing or
	// malformed envelope.
	ErrInvalidResponse = errors.New("invalid response")
)

// ServerError is any remaining server-side failure, keyed by status code.
type ServerError struct {
	Code   int
	Detail string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Detail)
}

// DecodingError wraps a JSON parse failure on a success path.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// statusError translates a non-success HTTP status into the matching error.
func statusError(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusNotFound:
		return &ServerError{Code: code, Detail: "not found"}
	case http.StatusInternalServerError:
		return &ServerError{Code: code, Detail: "internal server error"}
	default:
		return &ServerError{Code: code, Detail: fmt.Sprintf("unexpected status code: %d", code)}
	}
}
