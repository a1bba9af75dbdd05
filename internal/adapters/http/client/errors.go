package client

import (
	"errors"
	"net/http"
)

// ErrUnreachable wraps transport failures.
var ErrUnreachable = errors.New("rankings server unreachable")

// APIError is a rejection returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error returns the server's message as sent.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}
