package search

import (
	"context"
	"fmt"

	"github.com/intramind/intramind/internal/domain"
	domcol "github.com/intramind/intramind/internal/domain/collection"
	"github.com/intramind/intramind/internal/domain/collection/field"
	"github.com/intramind/intramind/internal/domain/search/filter"
	"github.com/intramind/intramind/internal/domain/search/mode"
	"github.com/intramind/intramind/internal/domain/search/request"
	"github.com/intramind/intramind/internal/domain/search/result"
)

// Service handles document search across semantic, keyword, and hybrid modes.
type Service struct {
	repo  Repository
	colls CollectionReader
	embed Embedder
}

// New creates a search service. A nil embedder disables vectorization:
// semantic and hybrid queries then degrade to keyword search where the
// store supports it.
func New(repo Repository, colls CollectionReader, embed Embedder) *Service {
	return &Service{repo: repo, colls: colls, embed: embed}
}

// Search executes a document search across semantic, keyword, or hybrid modes.
func (s *Service) Search(
	ctx context.Context, collectionName string, req *request.Request,
) ([]result.Result, error) {
	col, err := s.colls.Get(ctx, domcol.Canonicalize(collectionName))
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	if err = validateFiltersAgainstSchema(req.Filters(), col); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}

	var results []result.Result
	switch req.Mode() {
	case mode.Semantic:
		results, err = s.searchSemantic(ctx, col.Name(), req)
	case mode.Keyword:
		results, err = s.searchKeyword(ctx, col.Name(), req)
	case mode.Hybrid:
		results, err = s.searchHybrid(ctx, col.Name(), req)
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode())
	}
	if err != nil {
		return nil, err
	}

	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}
	return results, nil
}

// searchSemantic embeds the query and runs KNN search (works on any backend).
// With the vectorizer disabled the query degrades to keyword search.
func (s *Service) searchSemantic(
	ctx context.Context, collectionName string, req *request.Request,
) ([]result.Result, error) {
	if s.embed == nil {
		if s.repo.SupportsTextSearch(ctx) {
			return s.searchKeyword(ctx, collectionName, req)
		}
		return nil, fmt.Errorf("semantic search without a vectorizer: %w", domain.ErrUnavailable)
	}
	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)

	results, err := s.repo.SearchKNN(
		ctx, collectionName, embResult.Embedding, req.Filters(), req.TopK(),
	)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return results, nil
}

// searchKeyword runs BM25 search (requires the FT module with a TEXT field).
func (s *Service) searchKeyword(
	ctx context.Context, collectionName string, req *request.Request,
) ([]result.Result, error) {
	if !s.repo.SupportsTextSearch(ctx) {
		return nil, domain.ErrKeywordSearchNotSupported
	}
	results, err := s.repo.SearchBM25(
		ctx, collectionName, req.Query(), req.Filters(), req.TopK(),
	)
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}
	return results, nil
}

// searchHybrid runs KNN and BM25, then fuses via RRF (requires a TEXT field).
// With the vectorizer disabled only the keyword half can run.
func (s *Service) searchHybrid(
	ctx context.Context, collectionName string, req *request.Request,
) ([]result.Result, error) {
	if !s.repo.SupportsTextSearch(ctx) {
		return nil, domain.ErrKeywordSearchNotSupported
	}
	if s.embed == nil {
		return s.searchKeyword(ctx, collectionName, req)
	}
	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)

	knnResults, err := s.repo.SearchKNN(
		ctx, collectionName, embResult.Embedding, req.Filters(), req.TopK(),
	)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	bm25Results, err := s.repo.SearchBM25(
		ctx, collectionName, req.Query(), req.Filters(), req.TopK(),
	)
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}
	return fuseRRF(knnResults, bm25Results, req.TopK()), nil
}

// validateFiltersAgainstSchema ensures filter fields are declared in the
// collection and that the condition kind matches the field type
// (match on string, range on number).
func validateFiltersAgainstSchema(expr filter.Expression, col domcol.Collection) error {
	if expr.IsEmpty() {
		return nil
	}
	groups := [][]filter.Condition{expr.Must(), expr.Should(), expr.MustNot()}
	for _, conditions := range groups {
		for _, c := range conditions {
			f, ok := col.FieldByName(c.Key())
			if !ok {
				return fmt.Errorf("unknown filter field %q", c.Key())
			}
			if c.IsMatch() && f.FieldType() != field.String {
				return fmt.Errorf("match filter on non-string field %q", c.Key())
			}
			if c.IsRange() && f.FieldType() != field.Number {
				return fmt.Errorf("range filter on non-number field %q", c.Key())
			}
		}
	}
	return nil
}
