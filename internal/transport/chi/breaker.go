package chi

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	rpc "github.com/intramind/intramind/internal/transport/grpc"
)

// BreakerConfig tunes the circuit breaker guarding the vector service.
// Zero values fall back to the defaults below.
type BreakerConfig struct {
	MaxRequests  uint32        // calls allowed through while half-open
	Interval     time.Duration // closed-state failure counter reset
	Timeout      time.Duration // open -> half-open delay
	MinRequests  uint32        // observations required before tripping
	FailureRatio float64       // trip threshold
}

const (
	defaultBreakerMaxRequests  = 3
	defaultBreakerInterval     = 60 * time.Second
	defaultBreakerTimeout      = 15 * time.Second
	defaultBreakerMinRequests  = 5
	defaultBreakerFailureRatio = 0.6
)

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxRequests == 0 {
		c.MaxRequests = defaultBreakerMaxRequests
	}
	if c.Interval == 0 {
		c.Interval = defaultBreakerInterval
	}
	if c.Timeout == 0 {
		c.Timeout = defaultBreakerTimeout
	}
	if c.MinRequests == 0 {
		c.MinRequests = defaultBreakerMinRequests
	}
	if c.FailureRatio == 0 {
		c.FailureRatio = defaultBreakerFailureRatio
	}
	return c
}

// BreakerClient guards a VectorClient with a circuit breaker so a dead
// vector service fails fast instead of tying up gateway workers. Health
// probes bypass the breaker; readiness reads its state instead.
type BreakerClient struct {
	inner VectorClient
	cb    *gobreaker.CircuitBreaker
}

var (
	_ VectorClient       = (*BreakerClient)(nil)
	_ BreakerStateReader = (*BreakerClient)(nil)
)

// NewBreakerClient wraps inner with a circuit breaker.
func NewBreakerClient(inner VectorClient, cfg BreakerConfig, logger *zap.Logger) *BreakerClient {
	cfg = cfg.withDefaults()

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vectordb",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return !breakerFailure(err)
		},
	})

	return &BreakerClient{inner: inner, cb: cb}
}

// breakerFailure reports whether an error indicates the upstream itself is
// unwell. Client errors (bad input, missing documents, quota) are normal
// traffic and must not trip the breaker.
func breakerFailure(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Unknown:
		return true
	default:
		return false
	}
}

// State reports the current breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](b *BreakerClient, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

func (b *BreakerClient) CreateCollection(ctx context.Context, req *rpc.CreateCollectionRequest) (*rpc.CollectionInfo, error) {
	return execute(b, func() (*rpc.CollectionInfo, error) { return b.inner.CreateCollection(ctx, req) })
}

func (b *BreakerClient) GetCollection(ctx context.Context, req *rpc.GetCollectionRequest) (*rpc.CollectionInfo, error) {
	return execute(b, func() (*rpc.CollectionInfo, error) { return b.inner.GetCollection(ctx, req) })
}

func (b *BreakerClient) ListCollections(ctx context.Context, req *rpc.ListCollectionsRequest) (*rpc.ListCollectionsResponse, error) {
	return execute(b, func() (*rpc.ListCollectionsResponse, error) { return b.inner.ListCollections(ctx, req) })
}

func (b *BreakerClient) DeleteCollection(ctx context.Context, req *rpc.DeleteCollectionRequest) (*rpc.DeleteCollectionResponse, error) {
	return execute(b, func() (*rpc.DeleteCollectionResponse, error) { return b.inner.DeleteCollection(ctx, req) })
}

func (b *BreakerClient) UpsertDocument(ctx context.Context, req *rpc.UpsertDocumentRequest) (*rpc.UpsertDocumentResponse, error) {
	return execute(b, func() (*rpc.UpsertDocumentResponse, error) { return b.inner.UpsertDocument(ctx, req) })
}

func (b *BreakerClient) GetDocument(ctx context.Context, req *rpc.GetDocumentRequest) (*rpc.DocumentInfo, error) {
	return execute(b, func() (*rpc.DocumentInfo, error) { return b.inner.GetDocument(ctx, req) })
}

func (b *BreakerClient) ListDocuments(ctx context.Context, req *rpc.ListDocumentsRequest) (*rpc.ListDocumentsResponse, error) {
	return execute(b, func() (*rpc.ListDocumentsResponse, error) { return b.inner.ListDocuments(ctx, req) })
}

func (b *BreakerClient) DeleteDocument(ctx context.Context, req *rpc.DeleteDocumentRequest) (*rpc.DeleteDocumentResponse, error) {
	return execute(b, func() (*rpc.DeleteDocumentResponse, error) { return b.inner.DeleteDocument(ctx, req) })
}

func (b *BreakerClient) BatchUpsert(ctx context.Context, req *rpc.BatchUpsertRequest) (*rpc.BatchUpsertResponse, error) {
	return execute(b, func() (*rpc.BatchUpsertResponse, error) { return b.inner.BatchUpsert(ctx, req) })
}

func (b *BreakerClient) Search(ctx context.Context, req *rpc.SearchRequest) (*rpc.SearchResponse, error) {
	return execute(b, func() (*rpc.SearchResponse, error) { return b.inner.Search(ctx, req) })
}

func (b *BreakerClient) GetUsage(ctx context.Context, req *rpc.GetUsageRequest) (*rpc.UsageReport, error) {
	return execute(b, func() (*rpc.UsageReport, error) { return b.inner.GetUsage(ctx, req) })
}

// CheckHealth goes straight to the upstream. Probing through the breaker
// would keep reporting an outage after the service recovers.
func (b *BreakerClient) CheckHealth(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	return b.inner.CheckHealth(ctx)
}
