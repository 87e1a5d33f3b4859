package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a request the server answered but did not accept.
type Error struct {
	Status  int
	Message string // server supplied, may be empty
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// MessageOf returns the server's message carried by err, or "".
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsUnauthorized reports a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
