package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

const expandSystemPrompt = `You rewrite search queries for a document retrieval system.
Produce alternative phrasings that could match relevant documents the
original wording would miss: synonyms, expanded abbreviations, more
specific or more general variants. Keep each reformulation short and
self-contained. Respond with a single JSON object:
{"queries": ["<reformulation>", ...]}`

// expander generates query reformulations to widen retrieval coverage.
// A failed or unparseable LLM call degrades to the original query only.
type expander struct {
	llm    ChatModel
	cache  *ristretto.Cache
	ttl    time.Duration
	max    int
	logger *zap.Logger
}

type expandResponse struct {
	Queries []string `json:"queries"`
}

func (e *expander) expand(ctx context.Context, query string) ([]string, int) {
	key := "expand:" + normalizeQuery(query)
	if v, ok := e.cache.Get(key); ok {
		if qs, ok := v.([]string); ok {
			return qs, 0
		}
	}

	prompt := fmt.Sprintf("Generate up to %d reformulations of this query: %s", e.max, query)
	res, err := e.llm.CompleteJSON(ctx, expandSystemPrompt, prompt)
	if err != nil {
		e.logger.Warn("Query expansion failed, searching with the original only", zap.Error(err))
		return []string{query}, 0
	}

	var parsed expandResponse
	if err := json.Unmarshal([]byte(extractJSON(res.Content)), &parsed); err != nil {
		e.logger.Warn("Expansion response unparseable, searching with the original only",
			zap.String("content", res.Content))
		return []string{query}, res.TotalTokens
	}

	queries := dedupeQueries(query, parsed.Queries, e.max)
	e.cache.SetWithTTL(key, queries, 1, e.ttl)
	return queries, res.TotalTokens
}

// dedupeQueries keeps the original query first and appends up to max
// unique reformulations. Comparison is case-insensitive.
func dedupeQueries(original string, alts []string, max int) []string {
	out := []string{original}
	seen := map[string]bool{normalizeQuery(original): true}

	for _, alt := range alts {
		if len(out) > max {
			break
		}
		alt = strings.TrimSpace(alt)
		norm := strings.ToLower(alt)
		if alt == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, alt)
	}
	return out
}
