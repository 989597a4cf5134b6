package intramind

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// SearchService executes search queries against a single collection.
type SearchService struct {
	collection string
	c          *Client
	obs        *observer
}

// SearchOptions configures a search query.
type SearchOptions struct {
	Mode    SearchMode
	Limit   int
	Filters FilterExpression
}

type searchRequest struct {
	CollectionName string            `json:"collectionName"`
	Query          string            `json:"query"`
	Mode           string            `json:"mode,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Filters        *FilterExpression `json:"filters,omitempty"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// Query executes a text search (semantic, keyword, or hybrid; the
// service defaults to hybrid when mode is unset).
func (s *SearchService) Query(
	ctx context.Context, query string, opts *SearchOptions,
) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.query", start, err) }()

	if opts == nil {
		opts = &SearchOptions{}
	}

	req := searchRequest{
		CollectionName: s.collection,
		Query:          query,
		Mode:           string(opts.Mode),
		Limit:          opts.Limit,
	}
	if len(opts.Filters.Must) > 0 || len(opts.Filters.Should) > 0 || len(opts.Filters.MustNot) > 0 {
		req.Filters = &opts.Filters
	}

	var out searchResponse
	if err = s.c.do(ctx, http.MethodPost, "/v1/search", nil, req, &out); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return out.Results, nil
}
