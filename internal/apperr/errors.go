package apperr

import (
	"errors"
	"net/http"
)

// Domain error taxonomy. Callers wrap these with fmt.Errorf("%w: ...") so the
// HTTP layer can map them with Status.
var (
	ErrValidation        = errors.New("invalid request")
	ErrNotFound          = errors.New("not found")
	ErrExpired           = errors.New("share link has expired")
	ErrUnauthorized      = errors.New("invalid password")
	ErrUpstream          = errors.New("ai provider request failed")
	ErrUpstreamTimeout   = errors.New("ai provider timed out")
	ErrMalformedResponse = errors.New("ai response is not valid json")
	ErrUnrecognizedShape = errors.New("ai response was not in a recognized format")
	ErrPersistence       = errors.New("storage unavailable")
	ErrUnavailable       = errors.New("service unavailable")
)

var statuses = []struct {
	err    error
	status int
}{
	{ErrValidation, http.StatusBadRequest},
	{ErrNotFound, http.StatusNotFound},
	{ErrExpired, http.StatusGone},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrUnavailable, http.StatusServiceUnavailable},
	{ErrUpstreamTimeout, http.StatusInternalServerError},
	{ErrUpstream, http.StatusInternalServerError},
	{ErrMalformedResponse, http.StatusInternalServerError},
	{ErrUnrecognizedShape, http.StatusInternalServerError},
	{ErrPersistence, http.StatusInternalServerError},
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text that is safe to show a client. Client
// errors keep their full message; server errors collapse to the sentinel text
// so internals never leak.
func PublicMessage(err error) string {
	status := Status(err)
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.err.Error()
		}
	}
	return "internal server error"
}
