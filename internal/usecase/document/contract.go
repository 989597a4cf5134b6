package document

import (
	"context"

	"github.com/intramind/intramind/internal/domain"
	domcol "github.com/intramind/intramind/internal/domain/collection"
	domdoc "github.com/intramind/intramind/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, collectionName string, doc *domdoc.Document) (created bool, err error)
	Get(ctx context.Context, collectionName, id string) (domdoc.Document, error)
	List(ctx context.Context, collectionName, cursor string, limit int) (
		docs []domdoc.Document, nextCursor string, err error,
	)
	Delete(ctx context.Context, collectionName, id string) error
}

// Collections reads and creates collections. Creation backs the
// auto-create path on first insert.
type Collections interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
	Create(ctx context.Context, col domcol.Collection) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
