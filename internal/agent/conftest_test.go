package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"

	"github.com/intramind/intramind/internal/transport/openai"
	sdk "github.com/intramind/intramind/pkg/sdk"
)

// mockChat implements ChatModel for tests. Nil funcs return a bland
// successful completion.
type mockChat struct {
	completeFn     func(system, user string) (openai.ChatResult, error)
	completeJSONFn func(system, user string) (openai.ChatResult, error)

	mu        sync.Mutex
	completes int
	jsons     int
}

func (m *mockChat) Complete(_ context.Context, system, user string) (openai.ChatResult, error) {
	m.mu.Lock()
	m.completes++
	m.mu.Unlock()
	if m.completeFn != nil {
		return m.completeFn(system, user)
	}
	return openai.ChatResult{Content: "ok", TotalTokens: 1}, nil
}

func (m *mockChat) CompleteJSON(_ context.Context, system, user string) (openai.ChatResult, error) {
	m.mu.Lock()
	m.jsons++
	m.mu.Unlock()
	if m.completeJSONFn != nil {
		return m.completeJSONFn(system, user)
	}
	return openai.ChatResult{Content: `{}`, TotalTokens: 1}, nil
}

func (m *mockChat) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completes + m.jsons
}

type searchCall struct {
	collection string
	query      string
	limit      int
}

// mockSearcher implements GatewaySearcher and records calls; retrieval
// invokes it concurrently.
type mockSearcher struct {
	searchFn func(collection, query string, limit int) ([]sdk.SearchResult, error)

	mu    sync.Mutex
	calls []searchCall
}

func (m *mockSearcher) Search(
	_ context.Context, collection, query string, limit int,
) ([]sdk.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, searchCall{collection: collection, query: query, limit: limit})
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(collection, query, limit)
	}
	return nil, nil
}

func (m *mockSearcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockMemory implements MemoryStore.
type mockMemory struct {
	recallFn func(sessionID, query string) ([]Exchange, error)
	recordFn func(sessionID string, ex Exchange) error

	mu       sync.Mutex
	recorded []Exchange
}

func (m *mockMemory) Recall(_ context.Context, sessionID, query string) ([]Exchange, error) {
	if m.recallFn != nil {
		return m.recallFn(sessionID, query)
	}
	return nil, nil
}

func (m *mockMemory) Record(_ context.Context, sessionID string, ex Exchange) error {
	if m.recordFn != nil {
		return m.recordFn(sessionID, ex)
	}
	m.mu.Lock()
	m.recorded = append(m.recorded, ex)
	m.mu.Unlock()
	return nil
}

func newTestCache(t *testing.T) *ristretto.Cache {
	t.Helper()
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
	})
	if err != nil {
		t.Fatalf("build cache: %v", err)
	}
	t.Cleanup(cache.Close)
	return cache
}

func newTestEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DefaultCollection == "" {
		cfg.DefaultCollection = "knowledge_base"
	}
	if cfg.MaxExpansions == 0 {
		cfg.MaxExpansions = 3
	}
	if cfg.SearchLimit == 0 {
		cfg.SearchLimit = 6
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func chatJSON(content string, tokens int) openai.ChatResult {
	return openai.ChatResult{Content: content, TotalTokens: tokens}
}

func hit(id, content string) sdk.SearchResult {
	return sdk.SearchResult{DocumentID: id, Score: 0.9, Content: content}
}
