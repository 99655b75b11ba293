// Package api is the network boundary of stockdesk: a bearer-token HTTP client for the
// dashboard REST backend, strict decoding of collection responses, and the error taxonomy
// surfaced to views.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy. Every error leaving this package matches exactly one of these with errors.Is,
// except that an HTTP 401 matches both ErrServer and ErrAuthRequired.
var (
	ErrAuthRequired = errors.New("authentication required")
	ErrNetwork      = errors.New("network error")
	ErrServer       = errors.New("server error")
	ErrDecode       = errors.New("malformed response")
	ErrValidation   = errors.New("validation error")
)

// ServerError is a non-success HTTP status with the message reported by the backend.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server error: %d: %s", e.Status, e.Message)
}

// Is matches ErrServer, and ErrAuthRequired for 401 responses.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrServer:
		return true
	case ErrAuthRequired:
		return e.Status == http.StatusUnauthorized
	default:
		return false
	}
}

// Kind names an error class for rendering.
type Kind string

// Error kinds.
const (
	KindNone         Kind = ""
	KindAuthRequired Kind = "AuthRequired"
	KindNetwork      Kind = "NetworkError"
	KindServer       Kind = "ServerError"
	KindDecode       Kind = "DecodeError"
	KindValidation   Kind = "ValidationError"
	KindUnknown      Kind = "Unknown"
)

// KindOf classifies err. Authentication wins over the server class so an expired
// session renders as a login prompt.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuthRequired):
		return KindAuthRequired
	case errors.Is(err, ErrServer):
		return KindServer
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindUnknown
	}
}

// Message returns a short user-facing description of err for inline error banners.
func Message(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindAuthRequired:
		return "Please log in to continue."
	case KindServer:
		var se *ServerError
		if errors.As(err, &se) && se.Message != "" {
			return se.Message
		}
		return "The server could not complete the request."
	case KindNetwork:
		return "Could not reach the server. Check your connection and retry."
	case KindDecode:
		return "The server sent an unexpected response."
	default:
		return err.Error()
	}
}
