package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Machine-readable error codes of the REST surface.
const (
	codeInvalidRequest     = "invalid_request"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeAlreadyExists      = "already_exists"
	codeQuotaExceeded      = "quota_exceeded"
	codeServiceUnavailable = "service_unavailable"
	codeInternal           = "internal"
)

// errorHandler tries to handle an upstream error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// breakerHandler answers for an open circuit without touching the wire.
func breakerHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "vector service unavailable")
	return true
}

// codeHandler returns an errorHandler matching a single grpc status code.
// An empty message passes the upstream status message through; the vector
// service only puts client-safe text in it.
func codeHandler(code codes.Code, httpStatus int, errCode, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		st, ok := status.FromError(err)
		if !ok || st.Code() != code {
			return false
		}
		msg := message
		if msg == "" {
			msg = st.Message()
		}
		writeError(w, httpStatus, errCode, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorInfo{
		Code:    code,
		Message: message,
	}})
}

// decodeStrict parses a JSON body and rejects unknown fields, so a typo
// in a payload fails loudly instead of being silently dropped.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
