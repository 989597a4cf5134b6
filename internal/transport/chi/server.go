package chi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	rpc "github.com/intramind/intramind/internal/transport/grpc"
)

const maxBatchSize = 100

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// Server is the REST face of the platform. It validates requests, forwards
// them to the vector service and translates rpc status codes back to HTTP.
type Server struct {
	vector        VectorClient
	breaker       BreakerStateReader
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the gateway HTTP server. breaker may be nil when the
// vector client is not wrapped in one; readiness then skips the check.
func NewServer(vector VectorClient, breaker BreakerStateReader, logger *zap.Logger) *Server {
	s := &Server{
		vector:  vector,
		breaker: breaker,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		breakerHandler,
		codeHandler(codes.InvalidArgument, http.StatusBadRequest, codeInvalidRequest, ""),
		codeHandler(codes.FailedPrecondition, http.StatusBadRequest, codeInvalidRequest, ""),
		codeHandler(codes.Unimplemented, http.StatusBadRequest, codeInvalidRequest, ""),
		codeHandler(codes.NotFound, http.StatusNotFound, codeNotFound, ""),
		codeHandler(codes.AlreadyExists, http.StatusConflict, codeAlreadyExists, ""),
		codeHandler(codes.ResourceExhausted, http.StatusTooManyRequests, codeQuotaExceeded, ""),
		codeHandler(codes.Unavailable, http.StatusServiceUnavailable, codeServiceUnavailable, "vector service unavailable"),
		codeHandler(codes.DeadlineExceeded, http.StatusServiceUnavailable, codeServiceUnavailable, "vector service timeout"),
	}
	return s
}

// Routes registers every gateway endpoint on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/health/liveness", s.Liveness)
	r.Get("/health/readiness", s.Readiness)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/collections", s.CreateCollection)
		r.Get("/collections", s.ListCollections)
		r.Get("/collections/{name}", s.GetCollection)
		r.Delete("/collections/{name}", s.DeleteCollection)

		r.Post("/documents", s.InsertDocument)
		r.Get("/documents", s.ListDocuments)
		r.Get("/documents/{id}", s.GetDocument)
		r.Put("/documents/{id}", s.UpdateDocument)
		r.Delete("/documents/{id}", s.DeleteDocument)
		r.Post("/documents/batch", s.BatchInsertDocuments)

		r.Post("/search", s.Search)
		r.Get("/usage", s.GetUsage)
	})
}

// CreateCollection handles POST /v1/collections.
func (s *Server) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CollectionName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "collectionName is required")
		return
	}

	info, err := s.vector.CreateCollection(r.Context(), &rpc.CreateCollectionRequest{
		CollectionName: req.CollectionName,
		Description:    req.Description,
		MetadataSchema: req.MetadataSchema,
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, info)
}

// ListCollections handles GET /v1/collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	resp, err := s.vector.ListCollections(r.Context(), &rpc.ListCollectionsRequest{})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}
	if resp.Collections == nil {
		resp.Collections = []rpc.CollectionInfo{}
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetCollection handles GET /v1/collections/{name}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	info, err := s.vector.GetCollection(r.Context(), &rpc.GetCollectionRequest{
		CollectionName: chi.URLParam(r, "name"),
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// DeleteCollection handles DELETE /v1/collections/{name}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	_, err := s.vector.DeleteCollection(r.Context(), &rpc.DeleteCollectionRequest{
		CollectionName: chi.URLParam(r, "name"),
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// InsertDocument handles POST /v1/documents. The target collection is
// auto-created upstream when it does not exist yet.
func (s *Server) InsertDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "documentId is required")
		return
	}
	if req.CollectionName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "collectionName is required")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "content is required")
		return
	}

	resp, err := s.vector.UpsertDocument(r.Context(), &rpc.UpsertDocumentRequest{
		CollectionName: req.CollectionName,
		DocumentID:     req.DocumentID,
		Content:        req.Content,
		Metadata:       req.Metadata,
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	setEmbeddingTokens(w, resp.EmbeddingTokens)
	writeJSON(w, http.StatusCreated, insertDocumentResponse{
		DocumentID:     resp.Document.DocumentID,
		CollectionName: resp.Document.CollectionName,
		Created:        resp.Created,
	})
}

// ListDocuments handles GET /v1/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	collectionName := r.URL.Query().Get("collectionName")
	if collectionName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "collectionName query parameter is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "limit must be an integer")
			return
		}
		if parsed < 0 {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "limit must not be negative")
			return
		}
		limit = parsed
	}

	resp, err := s.vector.ListDocuments(r.Context(), &rpc.ListDocumentsRequest{
		CollectionName: collectionName,
		Limit:          limit,
		Cursor:         r.URL.Query().Get("cursor"),
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}
	if resp.Documents == nil {
		resp.Documents = []rpc.DocumentInfo{}
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetDocument handles GET /v1/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	collectionName := r.URL.Query().Get("collectionName")
	if collectionName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "collectionName query parameter is required")
		return
	}

	doc, err := s.vector.GetDocument(r.Context(), &rpc.GetDocumentRequest{
		CollectionName: collectionName,
		DocumentID:     chi.URLParam(r, "id"),
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// UpdateDocument handles PUT /v1/documents/{id}. Unlike an insert it
// requires both the collection and the document to already exist.
func (s *Server) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req documentRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if req.DocumentID != "" && req.DocumentID != id {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "documentId in body does not match path")
		return
	}
	if req.CollectionName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "collectionName is required")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "content is required")
		return
	}

	resp, err := s.vector.UpsertDocument(r.Context(), &rpc.UpsertDocumentRequest{
		CollectionName: req.CollectionName,
		DocumentID:     id,
		Content:        req.Content,
		Metadata:       req.Metadata,
		Replace:        true,
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	setEmbeddingTokens(w, resp.EmbeddingTokens)
	writeJSON(w, http.StatusOK, resp.Document)
}

// DeleteDocument handles DELETE /v1/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	collectionName := r.URL.Query().Get("collectionName")
	if collectionName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "collectionName query parameter is required")
		return
	}

	_, err := s.vector.DeleteDocument(r.Context(), &rpc.DeleteDocumentRequest{
		CollectionName: collectionName,
		DocumentID:     chi.URLParam(r, "id"),
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BatchInsertDocuments handles POST /v1/documents/batch. The body is a raw
// JSON array and the reply mirrors it: one result per item, in order.
func (s *Server) BatchInsertDocuments(w http.ResponseWriter, r *http.Request) {
	var items []documentRequest
	if err := decodeStrict(r, &items); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "batch must not be empty")
		return
	}
	if len(items) > maxBatchSize {
		writeError(w, http.StatusBadRequest, codeInvalidRequest,
			fmt.Sprintf("batch size %d exceeds limit of %d", len(items), maxBatchSize))
		return
	}

	batch := make([]rpc.BatchItem, len(items))
	for i, item := range items {
		batch[i] = rpc.BatchItem{
			CollectionName: item.CollectionName,
			DocumentID:     item.DocumentID,
			Content:        item.Content,
			Metadata:       item.Metadata,
		}
	}

	resp, err := s.vector.BatchUpsert(r.Context(), &rpc.BatchUpsertRequest{Items: batch})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	results := resp.Results
	if results == nil {
		results = []rpc.BatchResult{}
	}

	setEmbeddingTokens(w, resp.EmbeddingTokens)
	writeJSON(w, http.StatusOK, results)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CollectionName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "collectionName is required")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "query is required")
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "limit must not be negative")
		return
	}

	resp, err := s.vector.Search(r.Context(), &rpc.SearchRequest{
		CollectionName: req.CollectionName,
		Query:          req.Query,
		Mode:           req.Mode,
		Limit:          req.Limit,
		Filters:        req.Filters,
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	results := resp.Results
	if results == nil {
		results = []rpc.SearchResult{}
	}

	setEmbeddingTokens(w, resp.EmbeddingTokens)
	writeJSON(w, http.StatusOK, searchResponse{
		Results: results,
		Count:   resp.Count,
	})
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	report, err := s.vector.GetUsage(r.Context(), &rpc.GetUsageRequest{
		Period: r.URL.Query().Get("period"),
	})
	if err != nil {
		s.handleUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// HealthCheck handles GET /health. The gateway aggregates its own status
// with the vector service health RPC.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"gateway":  statusHealthy,
		"vectordb": statusHealthy,
	}
	overall := statusHealthy
	httpStatus := http.StatusOK

	st, err := s.vector.CheckHealth(r.Context())
	if err != nil || st != healthpb.HealthCheckResponse_SERVING {
		checks["vectordb"] = statusUnhealthy
		overall = statusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: overall,
		Checks: checks,
	})
}

// Liveness handles GET /health/liveness. It only proves the process
// answers; no dependencies are touched.
func (s *Server) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/readiness. Not ready while the upstream
// breaker is open or the vector service is not serving.
func (s *Server) Readiness(w http.ResponseWriter, r *http.Request) {
	if s.breaker != nil && s.breaker.State() == gobreaker.StateOpen {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "vector service circuit open",
		})
		return
	}

	st, err := s.vector.CheckHealth(r.Context())
	if err != nil || st != healthpb.HealthCheckResponse_SERVING {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "vector service not serving",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleUpstreamError(w http.ResponseWriter, err error) {
	s.logger.Warn("upstream error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func setEmbeddingTokens(w http.ResponseWriter, tokens int) {
	if tokens > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(tokens))
	}
}
