package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/intramind/intramind/internal/db"
	"github.com/intramind/intramind/internal/domain"
	"github.com/intramind/intramind/internal/domain/search/filter"
	"github.com/intramind/intramind/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SupportsTextSearch proxies the capability check from the store.
func (r *Repo) SupportsTextSearch(ctx context.Context) bool {
	return r.store.SupportsTextSearch(ctx)
}

// SearchKNN performs a KNN (vector similarity) search on a collection with filter pre-filtering.
func (r *Repo) SearchKNN(
	ctx context.Context, collectionName string,
	vector []float32, filters filter.Expression, topK int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName: indexName(collectionName),
		Filters:   filters,
		Vector:    vector,
		K:         topK,
		// $ carries the whole JSON document, __vector_score the distance
		ReturnFields: []string{"$", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collectionName, err)
	}

	return parseResults(sr, collectionName), nil
}

// SearchBM25 performs a BM25 keyword search (requires a TEXT field in the index).
func (r *Repo) SearchBM25(
	ctx context.Context, collectionName string,
	query string, filters filter.Expression, topK int,
) ([]result.Result, error) {
	q := &db.TextQuery{
		IndexName:    indexName(collectionName),
		Query:        query,
		Filters:      filters,
		TopK:         topK,
		ReturnFields: []string{"$"},
	}

	sr, err := r.store.SearchBM25(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search bm25 %s: %w", collectionName, err)
	}

	return parseResults(sr, collectionName), nil
}

// parseResults converts db.SearchResult into []result.Result.
// Scores are already on the entries: similarity for KNN, BM25 for keyword.
func parseResults(sr *db.SearchResult, collection string) []result.Result {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := fmt.Sprintf("%s%s:", domain.KeyPrefix, collection)
	results := make([]result.Result, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		docID := strings.TrimPrefix(entry.Key, prefix)
		results = append(results, parseEntry(docID, entry))
	}

	return results
}

// parseEntry extracts content and metadata from the $ JSON payload of a hit.
func parseEntry(docID string, entry db.SearchEntry) result.Result {
	var content string
	var metadata map[string]string

	if raw := entry.Fields["$"]; raw != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			content, _ = m["content"].(string)
			if mm, ok := m["metadata"].(map[string]any); ok && len(mm) > 0 {
				metadata = make(map[string]string, len(mm))
				for k, v := range mm {
					switch t := v.(type) {
					case string:
						metadata[k] = t
					case float64:
						metadata[k] = strconv.FormatFloat(t, 'f', -1, 64)
					}
				}
			}
		}
	}

	return result.New(docID, entry.Score, content, metadata)
}

func indexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection)
}
