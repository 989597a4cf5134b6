package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/intramind/intramind/internal/transport/openai"
)

// Config wires an Engine. LLM, Searcher, and Logger are required;
// a nil Memory disables session memory.
type Config struct {
	LLM               ChatModel
	Searcher          GatewaySearcher
	Memory            MemoryStore
	DefaultCollection string
	MaxExpansions     int
	SearchLimit       int
	CacheTTL          time.Duration
	RateRPS           float64
	RateBurst         int
	Logger            *zap.Logger
}

// Request is one query through the workflow.
type Request struct {
	SessionID string
	// Collection overrides both the classifier's hint and the default.
	Collection string
	Query      string
	History    []Exchange
}

// Engine runs the classify, expand, retrieve, synthesize pipeline.
// Stages degrade independently: a dead LLM still classifies by
// heuristic and searches with the original query, and memory failures
// never block an answer.
type Engine struct {
	classify *classifier
	expand   *expander
	retrieve *retriever
	synth    *synthesizer

	memory            MemoryStore
	defaultCollection string
	logger            *zap.Logger
}

// NewEngine builds the pipeline. Stage results (classifications and
// expansions) share one ristretto cache keyed by stage prefix.
func NewEngine(cfg *Config) (*Engine, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("build stage cache: %w", err)
	}

	llm := cfg.LLM
	if cfg.RateRPS > 0 {
		llm = &rateLimitedChat{
			inner:   llm,
			limiter: rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst),
		}
	}

	maxExpansions := cfg.MaxExpansions
	if maxExpansions < 0 {
		maxExpansions = 0
	}
	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 6
	}

	return &Engine{
		classify: &classifier{llm: llm, cache: cache, ttl: cfg.CacheTTL, logger: cfg.Logger},
		expand:   &expander{llm: llm, cache: cache, ttl: cfg.CacheTTL, max: maxExpansions, logger: cfg.Logger},
		retrieve: &retriever{
			searcher: cfg.Searcher,
			limit:    searchLimit,
			topK:     searchLimit,
			logger:   cfg.Logger,
		},
		synth:             &synthesizer{llm: llm, logger: cfg.Logger},
		memory:            cfg.Memory,
		defaultCollection: cfg.DefaultCollection,
		logger:            cfg.Logger,
	}, nil
}

// Run executes the workflow for one query. On retrieval or synthesis
// failure the returned state still carries a user-facing answer naming
// the problem alongside the error.
func (e *Engine) Run(ctx context.Context, req Request) (*State, error) {
	st := &State{Query: req.Query, History: req.History}

	start := time.Now()
	cl, used := e.classify.classify(ctx, req.Query)
	st.Classification = cl
	st.TokensUsed += used
	st.addTiming("classify", start)

	memories := e.recallMemories(ctx, st, req)

	if cl.Type != QueryConversational {
		start = time.Now()
		queries, used := e.expand.expand(ctx, req.Query)
		st.ExpandedQueries = queries
		st.TokensUsed += used
		st.addTiming("expand", start)

		collection := resolveCollection(req.Collection, cl.Collection, e.defaultCollection)
		start = time.Now()
		hits, err := e.retrieve.retrieve(ctx, collection, queries)
		st.addTiming("retrieve", start)
		if err != nil {
			st.Answer = fmt.Sprintf("I could not reach the document service: %v", err)
			return st, fmt.Errorf("retrieve: %w", err)
		}
		st.Hits = hits
	}

	start = time.Now()
	answer, sources, used, err := e.synth.synthesize(ctx, st, memories)
	st.addTiming("synthesize", start)
	st.TokensUsed += used
	if err != nil {
		st.Answer = fmt.Sprintf("I could not generate an answer: %v", err)
		return st, err
	}
	st.Answer = answer
	st.Sources = sources

	if e.memory != nil {
		if err := e.memory.Record(ctx, req.SessionID, Exchange{Question: req.Query, Answer: answer}); err != nil {
			e.logger.Warn("Memory record failed", zap.Error(err))
		}
	}

	e.logger.Info("Workflow completed",
		zap.String("session_id", req.SessionID),
		zap.String("query_type", string(cl.Type)),
		zap.Int("expanded_queries", len(st.ExpandedQueries)),
		zap.Int("hits", len(st.Hits)),
		zap.Int("tokens_used", st.TokensUsed),
	)
	return st, nil
}

func (e *Engine) recallMemories(ctx context.Context, st *State, req Request) []Exchange {
	if e.memory == nil {
		return nil
	}
	start := time.Now()
	defer st.addTiming("recall", start)

	memories, err := e.memory.Recall(ctx, req.SessionID, req.Query)
	if err != nil {
		e.logger.Warn("Memory recall failed", zap.Error(err))
		return nil
	}
	return memories
}

func resolveCollection(explicit, hint, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if hint != "" {
		return hint
	}
	return fallback
}

// rateLimitedChat applies the client-side LLM rate limit ahead of
// every completion call.
type rateLimitedChat struct {
	inner   ChatModel
	limiter *rate.Limiter
}

func (r *rateLimitedChat) Complete(
	ctx context.Context, system, user string,
) (openai.ChatResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return openai.ChatResult{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.Complete(ctx, system, user)
}

func (r *rateLimitedChat) CompleteJSON(
	ctx context.Context, system, user string,
) (openai.ChatResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return openai.ChatResult{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.CompleteJSON(ctx, system, user)
}
