package grpc

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/intramind/intramind/internal/domain"
	dombatch "github.com/intramind/intramind/internal/domain/batch"
	domcol "github.com/intramind/intramind/internal/domain/collection"
	"github.com/intramind/intramind/internal/domain/collection/field"
	domdoc "github.com/intramind/intramind/internal/domain/document"
	"github.com/intramind/intramind/internal/domain/search/filter"
	"github.com/intramind/intramind/internal/domain/search/mode"
	"github.com/intramind/intramind/internal/domain/search/request"
	"github.com/intramind/intramind/internal/domain/search/result"
	domusage "github.com/intramind/intramind/internal/domain/usage"
	batchuc "github.com/intramind/intramind/internal/usecase/batch"
	collectionuc "github.com/intramind/intramind/internal/usecase/collection"
	documentuc "github.com/intramind/intramind/internal/usecase/document"
	searchuc "github.com/intramind/intramind/internal/usecase/search"
	usageuc "github.com/intramind/intramind/internal/usecase/usage"
)

// Batch result statuses on the wire.
const (
	batchStatusSuccess = "success"
	batchStatusFailed  = "failed"
)

// Server implements VectorServiceServer on top of the usecase layer.
type Server struct {
	collections *collectionuc.Service
	documents   *documentuc.Service
	search      *searchuc.Service
	batch       *batchuc.Service
	usage       *usageuc.Service
	logger      *zap.Logger
}

var _ VectorServiceServer = (*Server)(nil)

// NewServer creates the vector service implementation.
func NewServer(
	collections *collectionuc.Service,
	documents *documentuc.Service,
	search *searchuc.Service,
	batch *batchuc.Service,
	usage *usageuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		collections: collections,
		documents:   documents,
		search:      search,
		batch:       batch,
		usage:       usage,
		logger:      logger,
	}
}

// CreateCollection registers a new collection with an optional metadata schema.
func (s *Server) CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*CollectionInfo, error) {
	if req.CollectionName == "" {
		return nil, status.Error(codes.InvalidArgument, "collectionName is required")
	}
	fields, err := fieldsFromWire(req.MetadataSchema)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid metadataSchema: %v", err)
	}

	col, err := s.collections.Create(ctx, req.CollectionName, req.Description, fields)
	if err != nil {
		return nil, s.domainError(err, "create collection")
	}

	// Responses echo the caller's spelling of the name. The canonical
	// form is an addressing detail of the store.
	info := collectionToWire(col)
	info.CollectionName = req.CollectionName
	return &info, nil
}

// GetCollection returns a collection with its live document count.
func (s *Server) GetCollection(ctx context.Context, req *GetCollectionRequest) (*CollectionInfo, error) {
	if req.CollectionName == "" {
		return nil, status.Error(codes.InvalidArgument, "collectionName is required")
	}

	col, err := s.collections.Get(ctx, req.CollectionName)
	if err != nil {
		return nil, s.domainError(err, "get collection")
	}

	info := collectionToWire(col)
	info.CollectionName = req.CollectionName
	return &info, nil
}

// ListCollections returns every collection.
func (s *Server) ListCollections(ctx context.Context, _ *ListCollectionsRequest) (*ListCollectionsResponse, error) {
	cols, err := s.collections.List(ctx)
	if err != nil {
		return nil, s.domainError(err, "list collections")
	}

	items := make([]CollectionInfo, len(cols))
	for i, c := range cols {
		items[i] = collectionToWire(c)
	}
	return &ListCollectionsResponse{Collections: items, Count: len(items)}, nil
}

// DeleteCollection drops a collection and all documents in it.
func (s *Server) DeleteCollection(ctx context.Context, req *DeleteCollectionRequest) (*DeleteCollectionResponse, error) {
	if req.CollectionName == "" {
		return nil, status.Error(codes.InvalidArgument, "collectionName is required")
	}

	if err := s.collections.Delete(ctx, req.CollectionName); err != nil {
		return nil, s.domainError(err, "delete collection")
	}
	return &DeleteCollectionResponse{Deleted: true}, nil
}

// UpsertDocument stores one document with automatic vectorization. With
// the replace flag set the document must already exist and nothing is
// auto-created.
func (s *Server) UpsertDocument(ctx context.Context, req *UpsertDocumentRequest) (*UpsertDocumentResponse, error) {
	if req.CollectionName == "" {
		return nil, status.Error(codes.InvalidArgument, "collectionName is required")
	}
	if req.Replace && req.DocumentID == "" {
		return nil, status.Error(codes.InvalidArgument, "documentId is required when replace is set")
	}

	ctx, usage := domain.NewContextWithUsage(ctx)

	var (
		doc     domdoc.Document
		created bool
		err     error
	)
	if req.Replace {
		doc, err = s.documents.Replace(ctx, req.CollectionName, req.DocumentID, req.Content, req.Metadata)
	} else {
		doc, created, err = s.documents.Upsert(ctx, req.CollectionName, req.DocumentID, req.Content, req.Metadata)
	}
	if err != nil {
		return nil, s.domainError(err, "upsert document")
	}

	return &UpsertDocumentResponse{
		Document:        documentToWire(req.CollectionName, &doc),
		Created:         created,
		EmbeddingTokens: usedTokens(usage),
	}, nil
}

// GetDocument fetches a single document.
func (s *Server) GetDocument(ctx context.Context, req *GetDocumentRequest) (*DocumentInfo, error) {
	if req.CollectionName == "" {
		return nil, status.Error(codes.InvalidArgument, "collectionName is required")
	}
	if req.DocumentID == "" {
		return nil, status.Error(codes.InvalidArgument, "documentId is required")
	}

	doc, err := s.documents.Get(ctx, req.CollectionName, req.DocumentID)
	if err != nil {
		return nil, s.domainError(err, "get document")
	}

	info := documentToWire(req.CollectionName, &doc)
	return &info, nil
}

// ListDocuments returns one page of a collection's documents.
func (s *Server) ListDocuments(ctx context.Context, req *ListDocumentsRequest) (*ListDocumentsResponse, error) {
	if req.CollectionName == "" {
		return nil, status.Error(codes.InvalidArgument, "collectionName is required")
	}
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}

	docs, nextCursor, err := s.documents.List(ctx, req.CollectionName, req.Cursor, req.Limit)
	if err != nil {
		return nil, s.domainError(err, "list documents")
	}

	items := make([]DocumentInfo, len(docs))
	for i := range docs {
		items[i] = documentToWire(req.CollectionName, &docs[i])
	}
	return &ListDocumentsResponse{Documents: items, NextCursor: nextCursor}, nil
}

// DeleteDocument removes one document.
func (s *Server) DeleteDocument(ctx context.Context, req *DeleteDocumentRequest) (*DeleteDocumentResponse, error) {
	if req.CollectionName == "" {
		return nil, status.Error(codes.InvalidArgument, "collectionName is required")
	}
	if req.DocumentID == "" {
		return nil, status.Error(codes.InvalidArgument, "documentId is required")
	}

	if err := s.documents.Delete(ctx, req.CollectionName, req.DocumentID); err != nil {
		return nil, s.domainError(err, "delete document")
	}
	return &DeleteDocumentResponse{Deleted: true}, nil
}

// BatchUpsert ingests a batch of documents with per-item outcomes.
func (s *Server) BatchUpsert(ctx context.Context, req *BatchUpsertRequest) (*BatchUpsertResponse, error) {
	if len(req.Items) == 0 {
		return nil, status.Error(codes.InvalidArgument, "items must not be empty")
	}

	items := make([]batchuc.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = batchuc.Item{
			CollectionName: it.CollectionName,
			ID:             it.DocumentID,
			Content:        it.Content,
			Metadata:       it.Metadata,
		}
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	results, err := s.batch.Upsert(ctx, items)
	if err != nil {
		return nil, s.domainError(err, "batch upsert")
	}

	wireResults := make([]BatchResult, len(results))
	for i := range results {
		wireResults[i] = batchResultToWire(results[i])
	}
	succeeded, failed := dombatch.Summarize(results)

	return &BatchUpsertResponse{
		Results:         wireResults,
		Succeeded:       succeeded,
		Failed:          failed,
		EmbeddingTokens: usedTokens(usage),
	}, nil
}

// Search queries one collection in semantic, keyword or hybrid mode.
func (s *Server) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req.CollectionName == "" {
		return nil, status.Error(codes.InvalidArgument, "collectionName is required")
	}
	filters, err := filtersFromWire(req.Filters)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid filters: %v", err)
	}
	domReq, err := request.New(req.Query, mode.Mode(req.Mode), filters, req.Limit)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid search request: %v", err)
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	results, err := s.search.Search(ctx, req.CollectionName, &domReq)
	if err != nil {
		return nil, s.domainError(err, "search")
	}

	return &SearchResponse{
		Results:         resultsToWire(results),
		Count:           len(results),
		EmbeddingTokens: usedTokens(usage),
	}, nil
}

// GetUsage reports embedding usage for a period. Empty period means day.
func (s *Server) GetUsage(ctx context.Context, req *GetUsageRequest) (*UsageReport, error) {
	period := domusage.Period(req.Period)
	if period == "" {
		period = domusage.PeriodDay
	}
	if !period.IsValid() {
		return nil, status.Errorf(codes.InvalidArgument, "invalid period %q", req.Period)
	}

	report := s.usage.GetReport(ctx, period)
	return usageToWire(&report), nil
}

// domainError logs a failed usecase call and maps it onto the wire.
func (s *Server) domainError(err error, op string) error {
	s.logger.Warn(op+" failed", zap.Error(err))
	return toStatusError(err)
}

func usedTokens(u *domain.EmbeddingUsage) int {
	if u == nil || !u.Used {
		return 0
	}
	return u.TotalTokens
}

// --- Wire converters ---

func fieldsFromWire(schema []FieldSchema) ([]field.Field, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	fields := make([]field.Field, 0, len(schema))
	for _, fs := range schema {
		f, err := field.New(fs.Name, field.Type(fs.Type))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func collectionToWire(col domcol.Collection) CollectionInfo {
	schema := make([]FieldSchema, 0, len(col.Fields()))
	for _, f := range col.Fields() {
		schema = append(schema, FieldSchema{Name: f.Name(), Type: string(f.FieldType())})
	}
	return CollectionInfo{
		CollectionName: col.Name(),
		Description:    col.Description(),
		MetadataSchema: schema,
		VectorDim:      col.VectorDim(),
		VectorCount:    col.VectorCount(),
		CreatedAt:      formatMillis(col.CreatedAt()),
	}
}

func documentToWire(collectionName string, doc *domdoc.Document) DocumentInfo {
	return DocumentInfo{
		DocumentID:     doc.ID(),
		CollectionName: collectionName,
		Content:        doc.Content(),
		Metadata:       doc.Metadata(),
		CreatedAt:      formatMillis(doc.CreatedAt()),
		UpdatedAt:      formatMillis(doc.UpdatedAt()),
	}
}

func batchResultToWire(r dombatch.Result) BatchResult {
	out := BatchResult{DocumentID: r.ID(), Status: batchStatusSuccess}
	if r.Status() == dombatch.StatusError {
		out.Status = batchStatusFailed
		if err := r.Err(); err != nil {
			out.Error = err.Error()
		}
	}
	return out
}

func filtersFromWire(expr *FilterExpression) (filter.Expression, error) {
	if expr == nil {
		return filter.Expression{}, nil
	}
	must, err := conditionsFromWire(expr.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	should, err := conditionsFromWire(expr.Should)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromWire(expr.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.NewExpression(must, should, mustNot)
}

func conditionsFromWire(conds []FilterCondition) ([]filter.Condition, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(conds))
	for _, c := range conds {
		switch {
		case c.Match != nil && c.Range != nil:
			return nil, fmt.Errorf("condition on %q sets both match and range", c.Key)
		case c.Match != nil:
			cond, err := filter.NewMatch(c.Key, *c.Match)
			if err != nil {
				return nil, err
			}
			out = append(out, cond)
		case c.Range != nil:
			r, err := filter.NewRangeFilter(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
			if err != nil {
				return nil, fmt.Errorf("range on %q: %w", c.Key, err)
			}
			cond, err := filter.NewRange(c.Key, r)
			if err != nil {
				return nil, err
			}
			out = append(out, cond)
		default:
			return nil, fmt.Errorf("condition on %q needs match or range", c.Key)
		}
	}
	return out, nil
}

func resultsToWire(results []result.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = SearchResult{
			DocumentID: r.ID(),
			Score:      r.Score(),
			Content:    r.Content(),
			Metadata:   r.Metadata(),
		}
	}
	return out
}

func usageToWire(rep *domusage.Report) *UsageReport {
	m := rep.Metrics()
	b := rep.Budget()
	return &UsageReport{
		Period:      string(rep.Period()),
		PeriodStart: formatMillis(rep.PeriodStart()),
		PeriodEnd:   formatMillis(rep.PeriodEnd()),
		Usage: UsageMetrics{
			EmbeddingRequests: m.EmbeddingRequests(),
			Tokens:            m.Tokens(),
		},
		Budget: UsageBudget{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        formatMillis(b.ResetsAt()),
		},
	}
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}
