package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/intramind/intramind/internal/config"
	"github.com/intramind/intramind/internal/db"
	dbRedis "github.com/intramind/intramind/internal/db/redis"
	dbValkey "github.com/intramind/intramind/internal/db/valkey"
	"github.com/intramind/intramind/internal/domain"
	logpkg "github.com/intramind/intramind/internal/logger"
	"github.com/intramind/intramind/internal/metrics"
	budgetrepo "github.com/intramind/intramind/internal/repository/budget"
	collectionrepo "github.com/intramind/intramind/internal/repository/collection"
	documentrepo "github.com/intramind/intramind/internal/repository/document"
	"github.com/intramind/intramind/internal/repository/embcache"
	searchrepo "github.com/intramind/intramind/internal/repository/search"
	rpc "github.com/intramind/intramind/internal/transport/grpc"
	openaiEmb "github.com/intramind/intramind/internal/transport/openai"
	batchuc "github.com/intramind/intramind/internal/usecase/batch"
	collectionuc "github.com/intramind/intramind/internal/usecase/collection"
	documentuc "github.com/intramind/intramind/internal/usecase/document"
	embeddinguc "github.com/intramind/intramind/internal/usecase/embedding"
	healthuc "github.com/intramind/intramind/internal/usecase/health"
	searchuc "github.com/intramind/intramind/internal/usecase/search"
	usageuc "github.com/intramind/intramind/internal/usecase/usage"
	"github.com/intramind/intramind/internal/version"
)

func main() {
	// .env is for local development; absence is not an error.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vector service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("grpc_port", cfg.VectorDB.GRPC.Port),
		zap.String("db_driver", cfg.VectorDB.Database.Driver),
		zap.Strings("db_addrs", cfg.VectorDB.Database.Addrs),
	)

	// The key prefix must be in place before any repository builds a key.
	if p := cfg.VectorDB.Storage.KeyPrefix; p != "" {
		domain.KeyPrefix = p
	}

	// Create database store based on driver
	var store db.Store
	switch cfg.VectorDB.Database.Driver {
	case "valkey":
		store, err = dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.VectorDB.Database.Addrs,
			Password: cfg.VectorDB.Database.Password,
		})
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.VectorDB.Database.Addrs,
			Password: cfg.VectorDB.Database.Password,
		})
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.VectorDB.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	readiness := time.Duration(cfg.VectorDB.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	embCfg := cfg.VectorDB.Embedding

	// Single BudgetTracker shared across both embedders and the usage service.
	var budget *embeddinguc.BudgetTracker
	budgetCfg := embCfg.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		budget = embeddinguc.NewBudgetTracker(
			embCfg.Model, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Connect persistence store — loads current counters from DB.
		budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
		budget.WithStore(ctx, budgetStore)
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker embeddinguc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	// One base provider client shared by both chains; the health service
	// probes it directly, below the cache and budget decorators.
	baseEmbedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     embCfg.APIKey,
		BaseURL:    embCfg.BaseURL,
		Model:      embCfg.Model,
		Dimensions: embCfg.Dimensions,
		Provider:   embCfg.Provider,
		Logger:     logger,
	})

	docEmbedder := buildEmbedder(baseEmbedder, embCfg, embCfg.DocumentInstruction, store, budgetChecker, logger)
	queryEmbedder := buildEmbedder(baseEmbedder, embCfg, embCfg.QueryInstruction, store, budgetChecker, logger)
	logger.Info("Embedders created",
		zap.String("provider", embCfg.Provider),
		zap.String("model", embCfg.Model),
		zap.Int("dimensions", embCfg.Dimensions),
	)

	// Create repositories (domain-native, no adapters)
	vectorDim := embCfg.Dimensions
	if vectorDim == 0 {
		vectorDim = domain.DefaultVectorConfig().Dimensions
	}

	collRepo := collectionrepo.New(store, vectorDim).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.VectorDB.Index.HNSWM,
		EFConstruct: cfg.VectorDB.Index.HNSWEFConstruct,
	})
	docRepo := documentrepo.New(store)
	searchRepo := searchrepo.New(store)

	// Create use case services
	collSvc := collectionuc.New(collRepo, docRepo, vectorDim)
	docSvc := documentuc.New(docRepo, collRepo, docEmbedder, vectorDim).
		WithPagination(cfg.VectorDB.Index.DefaultPageSize, cfg.VectorDB.Index.MaxPageSize)
	searchSvc := searchuc.New(searchRepo, collRepo, queryEmbedder)
	batchSvc := batchuc.New(docRepo, collRepo, docEmbedder, vectorDim).
		WithMaxBatchSize(cfg.VectorDB.Index.MaxBatchSize)

	// Usage service — reads from shared BudgetTracker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader)

	// Health service
	healthSvc := healthuc.New(store, baseEmbedder)

	maxMsg := cfg.VectorDB.GRPC.MaxMsgMB * 1024 * 1024
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsg),
		grpc.MaxSendMsgSize(maxMsg),
		grpc.ChainUnaryInterceptor(
			rpc.UnaryRecoveryInterceptor(logger),
			rpc.UnaryLoggingInterceptor(logger),
			metrics.UnaryServerInterceptor(),
		),
	)
	rpc.RegisterVectorServiceServer(grpcServer, rpc.NewServer(
		collSvc, docSvc, searchSvc, batchSvc, usageSvc, logger,
	))

	// Standard health protocol: clients and the gateway readiness probe
	// check the empty service name.
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	go refreshHealth(healthCtx, healthServer, healthSvc, logger)

	// Prometheus scrapes through a side HTTP listener; the RPC port stays
	// protocol-pure.
	var metricsSrv *http.Server
	if cfg.VectorDB.GRPC.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.VectorDB.GRPC.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Starting metrics listener", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics listener error", zap.Error(err))
			}
		}()
	}

	addr := fmt.Sprintf(":%d", cfg.VectorDB.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", addr), zap.Error(err))
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting gRPC server", zap.String("addr", addr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal("gRPC server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	stopHealth()
	healthServer.Shutdown() // flips every service to NOT_SERVING

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Duration(cfg.VectorDB.GRPC.ShutdownSec) * time.Second):
		logger.Warn("Graceful stop timed out, forcing")
		grpcServer.Stop()
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}

	logger.Info("Server stopped gracefully")
}

// refreshHealth keeps the standard gRPC health status in sync with the
// aggregate health report. A degraded service (embedding provider down)
// still serves: reads and keyword search keep working.
func refreshHealth(ctx context.Context, hs *health.Server, svc *healthuc.Service, logger *zap.Logger) {
	const interval = 10 * time.Second

	update := func() {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		report := svc.Check(checkCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if report.Status == healthuc.Unhealthy {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
		hs.SetServingStatus(rpc.ServiceName, status)

		if report.Status != healthuc.Healthy {
			logger.Warn("Health check degraded",
				zap.String("status", string(report.Status)),
				zap.Any("checks", report.Checks),
			)
		}
	}

	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

// buildEmbedder assembles the decorator chain: base -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	base domain.Embedder,
	embCfg config.EmbeddingConfig,
	instruction string,
	store db.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	// Cached
	embedder := base
	if embCfg.CacheEnabled {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	// Instrumented (budget + metrics)
	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, embCfg.Provider, embCfg.Model, budget, logger,
	)

	// Instruction prefix (outermost — cache key includes instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}
