package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/intramind/intramind/internal/domain"
)

// SessionMemory keeps completed exchanges in an embedded chromem-go
// vector store, one collection per session. Embeddings are computed
// by the configured provider; chromem only stores and ranks them.
type SessionMemory struct {
	db       *chromem.DB
	embedder domain.Embedder
	topK     int
	logger   *zap.Logger

	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// NewSessionMemory opens the store. An empty path keeps everything in
// memory; otherwise exchanges survive restarts under path.
func NewSessionMemory(
	path string, embedder domain.Embedder, topK int, logger *zap.Logger,
) (*SessionMemory, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open memory store: %w", err)
		}
	}

	return &SessionMemory{
		db:          db,
		embedder:    embedder,
		topK:        topK,
		logger:      logger,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// collection returns the per-session collection, creating it on first
// use. Sessions without an id share the global collection.
func (m *SessionMemory) collection(sessionID string) (*chromem.Collection, error) {
	m.mu.RLock()
	col, ok := m.collections[sessionID]
	m.mu.RUnlock()
	if ok {
		return col, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if col, ok := m.collections[sessionID]; ok {
		return col, nil
	}

	name := "global"
	if sessionID != "" {
		name = "session_" + sessionID
	}
	// Embeddings are always supplied by us, so no embedding func.
	col, err := m.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create memory collection: %w", err)
	}
	m.collections[sessionID] = col
	return col, nil
}

// Record embeds and stores one completed exchange.
func (m *SessionMemory) Record(ctx context.Context, sessionID string, ex Exchange) error {
	col, err := m.collection(sessionID)
	if err != nil {
		return err
	}

	text := "Q: " + ex.Question + "\nA: " + ex.Answer
	emb, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed exchange: %w", err)
	}

	doc := chromem.Document{
		ID:        uuid.NewString(),
		Content:   text,
		Embedding: emb.Embedding,
		Metadata: map[string]string{
			"session_id": sessionID,
			"question":   ex.Question,
			"answer":     ex.Answer,
			"created_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("store exchange: %w", err)
	}

	m.logger.Debug("Exchange recorded",
		zap.String("session_id", sessionID),
		zap.String("memory_id", doc.ID),
	)
	return nil
}

// Recall returns up to topK past exchanges most similar to the query.
// An empty session returns nil, nil.
func (m *SessionMemory) Recall(ctx context.Context, sessionID, query string) ([]Exchange, error) {
	col, err := m.collection(sessionID)
	if err != nil {
		return nil, err
	}

	emb, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// chromem requires nResults <= collection size; shrink until the
	// query fits.
	var results []chromem.Result
	for limit := m.topK; limit >= 1; limit-- {
		results, err = col.QueryEmbedding(ctx, emb.Embedding, limit, nil, nil)
		if err == nil {
			break
		}
		if !isTooFewDocsError(err) {
			return nil, fmt.Errorf("query memory: %w", err)
		}
		if limit == 1 {
			return nil, nil
		}
	}

	exchanges := make([]Exchange, 0, len(results))
	for _, r := range results {
		exchanges = append(exchanges, Exchange{
			Question: r.Metadata["question"],
			Answer:   r.Metadata["answer"],
		})
	}
	return exchanges, nil
}

func isTooFewDocsError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") ||
		strings.Contains(msg, "number of documents")
}
