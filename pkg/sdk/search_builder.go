package intramind

import (
	"context"
	"fmt"
)

// Hit is a typed search result.
type Hit[T any] struct {
	Item  T
	Score float64
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx *TypedIndex[T]

	query   string
	mode    SearchMode
	filters []FilterCondition
	limit   int
}

// Query sets the text query for semantic/keyword/hybrid search.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	b.query = q
	return b
}

// Mode sets the search mode (semantic, keyword, hybrid).
func (b *SearchBuilder[T]) Mode(m SearchMode) *SearchBuilder[T] {
	b.mode = m
	return b
}

// Where adds a metadata filter condition (exact match).
func (b *SearchBuilder[T]) Where(key, value string) *SearchBuilder[T] {
	b.filters = append(b.filters, FilterCondition{Key: key, Match: &value})
	return b
}

// WhereRange adds a numeric range filter condition.
func (b *SearchBuilder[T]) WhereRange(key string, r RangeFilter) *SearchBuilder[T] {
	b.filters = append(b.filters, FilterCondition{Key: key, Range: &r})
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.limit = n
	return b
}

// Do executes the search and returns typed results.
func (b *SearchBuilder[T]) Do(ctx context.Context) ([]Hit[T], error) {
	opts := &SearchOptions{Mode: b.mode, Limit: b.limit}
	if len(b.filters) > 0 {
		opts.Filters = FilterExpression{Must: b.filters}
	}

	results, err := b.idx.client.Search(b.idx.name).Query(ctx, b.query, opts)
	if err != nil {
		return nil, fmt.Errorf("typed search: %w", err)
	}

	hits := make([]Hit[T], len(results))
	for i, r := range results {
		item, ok := b.idx.meta.fromFields(r.DocumentID, r.Content, r.Metadata).(T)
		if !ok {
			continue
		}
		hits[i] = Hit[T]{Item: item, Score: r.Score}
	}
	return hits, nil
}
