package batch

import (
	"context"

	"github.com/intramind/intramind/internal/domain"
	domcol "github.com/intramind/intramind/internal/domain/collection"
	domdoc "github.com/intramind/intramind/internal/domain/document"
)

// BulkUpserter writes validated documents in one pipelined call.
type BulkUpserter interface {
	UpsertMulti(ctx context.Context, collectionName string, docs []*domdoc.Document) error
}

// Collections reads and creates collections. Creation backs the
// auto-create path, same as single-document upserts.
type Collections interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
	Create(ctx context.Context, col domcol.Collection) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
