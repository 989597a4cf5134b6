package intramind

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for gateway responses. Use errors.Is() to check.
var (
	ErrInvalidRequest = errors.New("intramind: invalid request")
	ErrUnauthorized   = errors.New("intramind: unauthorized")
	ErrNotFound       = errors.New("intramind: not found")
	ErrAlreadyExists  = errors.New("intramind: already exists")
	ErrQuotaExceeded  = errors.New("intramind: embedding quota exceeded")
	ErrUnavailable    = errors.New("intramind: service unavailable")
)

// APIError is a non-2xx response decoded from the gateway error envelope.
type APIError struct {
	StatusCode int    // HTTP status
	Code       string // machine-readable code from the envelope
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("intramind: %s (code=%s, http=%d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the envelope code to a package sentinel so that
// errors.Is(err, ErrNotFound) works. Responses without a recognizable
// code fall back to the HTTP status.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_request":
		return ErrInvalidRequest
	case "unauthorized":
		return ErrUnauthorized
	case "not_found":
		return ErrNotFound
	case "already_exists":
		return ErrAlreadyExists
	case "quota_exceeded":
		return ErrQuotaExceeded
	case "service_unavailable":
		return ErrUnavailable
	}
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrInvalidRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	case http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	}
	return nil
}
