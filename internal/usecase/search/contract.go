package search

import (
	"context"

	"github.com/intramind/intramind/internal/domain"
	domcol "github.com/intramind/intramind/internal/domain/collection"
	"github.com/intramind/intramind/internal/domain/search/filter"
	"github.com/intramind/intramind/internal/domain/search/result"
)

// Repository defines the search contract over the vector store.
type Repository interface {
	SearchKNN(
		ctx context.Context, collectionName string,
		vector []float32, filters filter.Expression, topK int,
	) ([]result.Result, error)
	SearchBM25(
		ctx context.Context, collectionName string,
		query string, filters filter.Expression, topK int,
	) ([]result.Result, error)
	SupportsTextSearch(ctx context.Context) bool
}

// CollectionReader reads collections for existence and schema validation.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
