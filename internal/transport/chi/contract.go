package chi

import (
	"context"

	"github.com/sony/gobreaker"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	rpc "github.com/intramind/intramind/internal/transport/grpc"
)

// VectorClient is the gateway's view of the vector service client.
type VectorClient interface {
	CreateCollection(ctx context.Context, req *rpc.CreateCollectionRequest) (*rpc.CollectionInfo, error)
	GetCollection(ctx context.Context, req *rpc.GetCollectionRequest) (*rpc.CollectionInfo, error)
	ListCollections(ctx context.Context, req *rpc.ListCollectionsRequest) (*rpc.ListCollectionsResponse, error)
	DeleteCollection(ctx context.Context, req *rpc.DeleteCollectionRequest) (*rpc.DeleteCollectionResponse, error)
	UpsertDocument(ctx context.Context, req *rpc.UpsertDocumentRequest) (*rpc.UpsertDocumentResponse, error)
	GetDocument(ctx context.Context, req *rpc.GetDocumentRequest) (*rpc.DocumentInfo, error)
	ListDocuments(ctx context.Context, req *rpc.ListDocumentsRequest) (*rpc.ListDocumentsResponse, error)
	DeleteDocument(ctx context.Context, req *rpc.DeleteDocumentRequest) (*rpc.DeleteDocumentResponse, error)
	BatchUpsert(ctx context.Context, req *rpc.BatchUpsertRequest) (*rpc.BatchUpsertResponse, error)
	Search(ctx context.Context, req *rpc.SearchRequest) (*rpc.SearchResponse, error)
	GetUsage(ctx context.Context, req *rpc.GetUsageRequest) (*rpc.UsageReport, error)
	CheckHealth(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error)
}

// BreakerStateReader exposes the upstream circuit breaker state for
// readiness checks.
type BreakerStateReader interface {
	State() gobreaker.State
}
