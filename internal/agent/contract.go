package agent

import (
	"context"

	"github.com/intramind/intramind/internal/transport/openai"
	sdk "github.com/intramind/intramind/pkg/sdk"
)

// ChatModel is the LLM contract the workflow stages consume.
// *openai.ChatClient satisfies it.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (openai.ChatResult, error)
	CompleteJSON(ctx context.Context, system, user string) (openai.ChatResult, error)
}

// GatewaySearcher runs one search against the platform for one query string.
type GatewaySearcher interface {
	Search(ctx context.Context, collection, query string, limit int) ([]sdk.SearchResult, error)
}

// MemoryStore recalls and records session exchanges. Failures are
// treated as non-fatal by the workflow.
type MemoryStore interface {
	Recall(ctx context.Context, sessionID, query string) ([]Exchange, error)
	Record(ctx context.Context, sessionID string, ex Exchange) error
}

// SDKSearcher adapts the intramind client to the GatewaySearcher seam.
type SDKSearcher struct {
	Client *sdk.Client
}

func (s SDKSearcher) Search(
	ctx context.Context, collection, query string, limit int,
) ([]sdk.SearchResult, error) {
	return s.Client.Search(collection).Query(ctx, query, &sdk.SearchOptions{Limit: limit})
}
