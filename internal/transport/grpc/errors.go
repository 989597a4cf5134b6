package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/intramind/intramind/internal/domain"
)

// statusMapping pairs one domain sentinel with the gRPC code it surfaces as.
type statusMapping struct {
	sentinel error
	code     codes.Code
}

// Order matters: document-level sentinels come before the generic ones
// they may be wrapped together with.
var statusMappings = []statusMapping{
	{domain.ErrInvalidSchema, codes.InvalidArgument},
	{domain.ErrVectorDimMismatch, codes.FailedPrecondition},
	{domain.ErrDocumentNotFound, codes.NotFound},
	{domain.ErrNotFound, codes.NotFound},
	{domain.ErrAlreadyExists, codes.AlreadyExists},
	{domain.ErrEmbeddingQuotaExceeded, codes.ResourceExhausted},
	{domain.ErrRateLimited, codes.ResourceExhausted},
	{domain.ErrEmbeddingProviderError, codes.Unavailable},
	{domain.ErrUnavailable, codes.Unavailable},
	{domain.ErrKeywordSearchNotSupported, codes.Unimplemented},
}

// toStatusError converts a usecase error into a gRPC status. Only the
// sentinel text crosses the wire; wrapped detail below it stays in the
// server logs. Unrecognized errors collapse to a generic Internal.
func toStatusError(err error) error {
	for _, m := range statusMappings {
		if errors.Is(err, m.sentinel) {
			return status.Error(m.code, m.sentinel.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}
