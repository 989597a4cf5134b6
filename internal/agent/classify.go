package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

const classifySystemPrompt = `You classify user queries for a document retrieval system.
Respond with a single JSON object:
{"type": "<factual|exploratory|procedural|conversational>", "confidence": <0.0-1.0>, "collection": "<collection name if the query names one, else empty>"}

factual: asks for a specific fact, value, or definition.
exploratory: asks for an overview, comparison, or broad explanation.
procedural: asks how to accomplish something step by step.
conversational: greetings, thanks, small talk, or questions about the assistant itself.`

// classifier categorizes queries with the LLM and falls back to a
// deterministic keyword heuristic when the model is unreachable or
// returns something unparseable.
type classifier struct {
	llm    ChatModel
	cache  *ristretto.Cache
	ttl    time.Duration
	logger *zap.Logger
}

type classifyResponse struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Collection string  `json:"collection"`
}

func (c *classifier) classify(ctx context.Context, query string) (Classification, int) {
	key := "classify:" + normalizeQuery(query)
	if v, ok := c.cache.Get(key); ok {
		if cl, ok := v.(Classification); ok {
			return cl, 0
		}
	}

	res, err := c.llm.CompleteJSON(ctx, classifySystemPrompt, query)
	if err != nil {
		c.logger.Warn("Classification call failed, using heuristic", zap.Error(err))
		return heuristicClassify(query), 0
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(extractJSON(res.Content)), &parsed); err != nil ||
		!QueryType(parsed.Type).IsValid() {
		c.logger.Warn("Classification response unparseable, using heuristic",
			zap.String("content", res.Content))
		return heuristicClassify(query), res.TotalTokens
	}

	cl := Classification{
		Type:       QueryType(parsed.Type),
		Confidence: parsed.Confidence,
		Collection: strings.TrimSpace(parsed.Collection),
	}
	c.cache.SetWithTTL(key, cl, 1, c.ttl)
	return cl, res.TotalTokens
}

// heuristicClassify is the offline fallback. Keyword buckets only, so
// the same query always lands in the same category.
func heuristicClassify(query string) Classification {
	q := normalizeQuery(query)
	first, _, _ := strings.Cut(q, " ")
	first = strings.Trim(first, "!,.?")

	switch first {
	case "hello", "hi", "hey", "thanks", "thank", "bye", "goodbye":
		return Classification{Type: QueryConversational, Confidence: 0.4}
	}
	if strings.Contains(q, "how are you") || strings.Contains(q, "who are you") {
		return Classification{Type: QueryConversational, Confidence: 0.4}
	}

	for _, p := range []string{"how do i", "how to", "how can i", "how does one", "show me how"} {
		if strings.HasPrefix(q, p) {
			return Classification{Type: QueryProcedural, Confidence: 0.4}
		}
	}

	for _, p := range []string{"compare", "explain", "tell me about", "what are", "overview"} {
		if strings.HasPrefix(q, p) {
			return Classification{Type: QueryExploratory, Confidence: 0.4}
		}
	}
	if strings.Contains(q, "difference between") || strings.Contains(q, "pros and cons") {
		return Classification{Type: QueryExploratory, Confidence: 0.4}
	}

	return Classification{Type: QueryFactual, Confidence: 0.4}
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// extractJSON strips the markdown code fences some models wrap around
// JSON responses even in JSON mode.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
