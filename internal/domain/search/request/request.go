package request

import (
	"fmt"

	"github.com/intramind/intramind/internal/domain/search/filter"
	"github.com/intramind/intramind/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 100
	MaxTopK        = 500

	// candidateFactor sizes the retrieval pool relative to limit. Hybrid
	// fusion and filtered queries need headroom beyond the requested page.
	candidateFactor = 4
)

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	filters    filter.Expression
	limit      int
	topK       int
}

// New validates and normalizes search parameters.
// Defaults: mode=semantic, limit=10. Limit is clamped to [1, 100];
// zero means default, negative is rejected.
func New(query string, m mode.Mode, filters filter.Expression, limit int) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Semantic
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("limit must not be negative")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	topK := limit * candidateFactor
	if topK > MaxTopK {
		topK = MaxTopK
	}

	return Request{
		query:      query,
		searchMode: m,
		filters:    filters,
		limit:      limit,
		topK:       topK,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the pre-filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// TopK returns the number of candidates to retrieve before trimming.
func (r *Request) TopK() int { return r.topK }
