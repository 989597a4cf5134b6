package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/intramind/intramind/internal/agent"
	"github.com/intramind/intramind/internal/config"
	logpkg "github.com/intramind/intramind/internal/logger"
	openaiLLM "github.com/intramind/intramind/internal/transport/openai"
	sdk "github.com/intramind/intramind/pkg/sdk"
)

// historyLimit caps the conversation window sent to the model. Older
// exchanges survive in session memory and come back through recall.
const historyLimit = 8

// queryTimeout bounds one full pipeline run, LLM calls included.
const queryTimeout = 2 * time.Minute

func main() {
	var (
		query      = flag.String("q", "", "run one query and exit")
		collection = flag.String("collection", "", "collection to search (overrides config)")
		session    = flag.String("session", "", "session id for memory (default: random)")
		gateway    = flag.String("gateway", "", "gateway base URL (overrides config)")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	// .env is for local development; absence is not an error.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Logs go to stderr and stay out of the conversation unless asked for.
	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	baseURL := cfg.Agent.Gateway.BaseURL
	if *gateway != "" {
		baseURL = *gateway
	}

	client, err := sdk.New(baseURL,
		sdk.WithAPIKey(cfg.Agent.Gateway.APIKey),
		sdk.WithTimeout(time.Duration(cfg.Agent.Gateway.TimeoutSec)*time.Second),
	)
	if err != nil {
		logger.Fatal("Failed to create gateway client", zap.Error(err))
	}

	chat := openaiLLM.NewChatClient(&openaiLLM.ChatConfig{
		APIKey:      cfg.Agent.LLM.APIKey,
		BaseURL:     cfg.Agent.LLM.BaseURL,
		Model:       cfg.Agent.LLM.Model,
		Temperature: cfg.Agent.LLM.Temperature,
		MaxTokens:   cfg.Agent.LLM.MaxTokens,
		Logger:      logger,
	})

	// Pass nil interface (not typed nil pointer!) when memory is disabled.
	var memory agent.MemoryStore
	if cfg.Agent.Memory.Enabled {
		memEmbedder := openaiLLM.NewEmbedder(&openaiLLM.Config{
			APIKey:   cfg.Agent.LLM.APIKey,
			BaseURL:  cfg.Agent.LLM.BaseURL,
			Model:    cfg.Agent.Memory.EmbeddingModel,
			Provider: "memory",
			Logger:   logger,
		})
		mem, err := agent.NewSessionMemory(cfg.Agent.Memory.Path, memEmbedder, cfg.Agent.Memory.TopK, logger)
		if err != nil {
			logger.Fatal("Failed to open session memory", zap.Error(err))
		}
		memory = mem
	}

	engine, err := agent.NewEngine(&agent.Config{
		LLM:               chat,
		Searcher:          &agent.SDKSearcher{Client: client},
		Memory:            memory,
		DefaultCollection: cfg.Agent.Workflow.DefaultCollection,
		MaxExpansions:     cfg.Agent.Workflow.MaxExpansions,
		SearchLimit:       cfg.Agent.Workflow.SearchLimit,
		CacheTTL:          time.Duration(cfg.Agent.Workflow.CacheTTLSec) * time.Second,
		RateRPS:           cfg.Agent.Workflow.RateRPS,
		RateBurst:         cfg.Agent.Workflow.RateBurst,
		Logger:            logger,
	})
	if err != nil {
		logger.Fatal("Failed to build agent", zap.Error(err))
	}

	sessionID := *session
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	logger.Debug("Agent ready",
		zap.String("gateway", baseURL),
		zap.String("model", cfg.Agent.LLM.Model),
		zap.String("session_id", sessionID),
	)

	if *query != "" {
		st, err := runQuery(engine, sessionID, *collection, *query, nil)
		printResult(st)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	repl(engine, sessionID, *collection)
}

// runQuery pushes one question through the pipeline. The returned state
// always carries a printable answer, even when err is non-nil.
func runQuery(engine *agent.Engine, sessionID, collection, query string, history []agent.Exchange) (*agent.State, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return engine.Run(ctx, agent.Request{
		SessionID:  sessionID,
		Collection: collection,
		Query:      query,
		History:    history,
	})
}

func repl(engine *agent.Engine, sessionID, collection string) {
	fmt.Printf("IntraMind agent, session %s\n", sessionID)
	fmt.Println("Ask a question. Type \"exit\" to leave.")

	var history []agent.Exchange
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}

		st, err := runQuery(engine, sessionID, collection, line, history)
		printResult(st)
		if err != nil {
			// The degraded answer is already on screen; keep the session going.
			continue
		}

		history = append(history, agent.Exchange{Question: line, Answer: st.Answer})
		if len(history) > historyLimit {
			history = history[len(history)-historyLimit:]
		}
	}
}

func printResult(st *agent.State) {
	if st == nil {
		return
	}

	fmt.Println(st.Answer)

	if len(st.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range st.Sources {
			fmt.Printf("  [%d] %s (score %.3f)\n", src.Ref, src.DocumentID, src.Score)
			if src.Snippet != "" {
				fmt.Printf("      %s\n", src.Snippet)
			}
		}
	}

	fmt.Printf("\n%s, %d tokens", st.Classification.Type, st.TokensUsed)
	for _, tm := range st.Timing {
		fmt.Printf("  %s=%s", tm.Stage, tm.Duration.Round(time.Millisecond))
	}
	fmt.Println()
}
