package search

import (
	"context"
	"errors"
	"testing"

	"github.com/intramind/intramind/internal/db"
	"github.com/intramind/intramind/internal/domain/search/filter"
)

// --- SearchKNN ---

func TestSearchKNN_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "intramind:Notes:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		if q.K != 10 {
			t.Errorf("unexpected K: %d", q.K)
		}
		if len(q.ReturnFields) != 2 || q.ReturnFields[0] != "$" || q.ReturnFields[1] != "__vector_score" {
			t.Errorf("unexpected return fields: %v", q.ReturnFields)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   "intramind:Notes:doc-1",
					Score: 0.877,
					Fields: map[string]string{
						"$": `{"content":"hello world","metadata":{"language":"go","priority":1.5}}`,
					},
				},
				{
					Key:   "intramind:Notes:doc-2",
					Score: 0.544,
					Fields: map[string]string{
						"$": `{"content":"goodbye world","metadata":{"language":"rust"}}`,
					},
				},
			},
		}, nil
	}

	results, err := repo.SearchKNN(ctx, "Notes", testVector(), filter.Expression{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID() != "doc-1" {
		t.Fatalf("expected ID doc-1, got %s", results[0].ID())
	}
	// Score comes from entry.Score set by the db layer (cosine similarity)
	if results[0].Score() != 0.877 {
		t.Fatalf("expected score 0.877, got %f", results[0].Score())
	}
	if results[0].Content() != "hello world" {
		t.Fatalf("expected content 'hello world', got %s", results[0].Content())
	}
	if results[0].Metadata()["language"] != "go" {
		t.Fatalf("unexpected metadata: %v", results[0].Metadata())
	}
	if results[0].Metadata()["priority"] != "1.5" {
		t.Fatalf("expected numeric metadata rendered as 1.5, got %v", results[0].Metadata())
	}
}

func TestSearchKNN_EmptyResults(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 0}, nil
	}

	results, err := repo.SearchKNN(ctx, "Notes", testVector(), filter.Expression{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearchKNN_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("index not found")
	}

	_, err := repo.SearchKNN(ctx, "Notes", testVector(), filter.Expression{}, 10)
	if err == nil {
		t.Fatal("expected error on SearchKNN failure")
	}
}

func TestSearchKNN_WithFilter(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	expr := mustExpression(t,
		[]filter.Condition{mustMatch(t, "language", "go")},
		nil, nil,
	)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.Filters.IsEmpty() {
			t.Error("expected non-empty filters")
		}
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{
					Key:    "intramind:Notes:doc-1",
					Score:  0.9,
					Fields: map[string]string{"$": `{"content":"filtered","metadata":{"language":"go"}}`},
				},
			},
		}, nil
	}

	results, err := repo.SearchKNN(ctx, "Notes", testVector(), expr, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearchKNN_BrokenPayload(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{Key: "intramind:Notes:doc-1", Score: 0.5, Fields: map[string]string{"$": "{broken"}},
			},
		}, nil
	}

	results, err := repo.SearchKNN(ctx, "Notes", testVector(), filter.Expression{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ID and score survive, content is empty
	if len(results) != 1 || results[0].ID() != "doc-1" || results[0].Content() != "" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

// --- SearchBM25 ---

func TestSearchBM25_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchBM25Fn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.IndexName != "intramind:Notes:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		if q.Query != "hello" {
			t.Errorf("unexpected query: %s", q.Query)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:    "intramind:Notes:doc-1",
					Score:  0.85,
					Fields: map[string]string{"$": `{"content":"hello world","metadata":{"language":"go"}}`},
				},
				{
					Key:    "intramind:Notes:doc-2",
					Score:  0.42,
					Fields: map[string]string{"$": `{"content":"goodbye world","metadata":{"language":"rust"}}`},
				},
			},
		}, nil
	}

	results, err := repo.SearchBM25(ctx, "Notes", "hello", filter.Expression{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID() != "doc-1" {
		t.Fatalf("expected ID doc-1, got %s", results[0].ID())
	}
	if results[0].Score() != 0.85 {
		t.Fatalf("expected score 0.85, got %f", results[0].Score())
	}
	if results[0].Content() != "hello world" {
		t.Fatalf("expected content 'hello world', got %s", results[0].Content())
	}
}

func TestSearchBM25_EmptyResults(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchBM25Fn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 0}, nil
	}

	results, err := repo.SearchBM25(ctx, "Notes", "nothing", filter.Expression{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearchBM25_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchBM25Fn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, errors.New("no TEXT field")
	}

	_, err := repo.SearchBM25(ctx, "Notes", "hello", filter.Expression{}, 10)
	if err == nil {
		t.Fatal("expected error on SearchBM25 failure")
	}
}

// --- SupportsTextSearch ---

func TestSupportsTextSearch_Proxied(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.supportsTextSearch = true
	if !repo.SupportsTextSearch(ctx) {
		t.Fatal("expected text search support to be proxied")
	}

	ms.supportsTextSearch = false
	if repo.SupportsTextSearch(ctx) {
		t.Fatal("expected no text search support")
	}
}
