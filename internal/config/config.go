package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of all three IntraMind binaries. Every binary
// loads the same file and reads its own section, so one deployment artifact
// describes the whole stack.
type Config struct {
	VectorDB VectorDBConfig `yaml:"vectordb"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Agent    AgentConfig    `yaml:"agent"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// VectorDBConfig holds the vector service settings.
type VectorDBConfig struct {
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Storage   StorageConfig   `yaml:"storage"`
}

// GRPCConfig holds gRPC server settings.
type GRPCConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"` // 0 disables the Prometheus listener
	ShutdownSec int `yaml:"shutdown_timeout_sec"`
	MaxMsgMB    int `yaml:"max_msg_mb"` // batches of large documents exceed the 4MB default
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds HNSW index and pagination settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	MaxBatchSize    int `yaml:"max_batch_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	Provider            string       `yaml:"provider"` // label for logs and metrics
	APIKey              string       `yaml:"api_key"`
	BaseURL             string       `yaml:"base_url"`
	Model               string       `yaml:"model"`
	Dimensions          int          `yaml:"dimensions"`
	DocumentInstruction string       `yaml:"document_instruction"`
	QueryInstruction    string       `yaml:"query_instruction"`
	CacheEnabled        bool         `yaml:"cache_enabled"`
	Budget              BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// GatewayConfig holds the REST gateway settings.
type GatewayConfig struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Auth     AuthConfig     `yaml:"auth"`
	Breaker  BreakerConfig  `yaml:"breaker"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// UpstreamConfig holds the connection to the vector service.
type UpstreamConfig struct {
	Addr       string `yaml:"addr"`
	TimeoutSec int    `yaml:"timeout_sec"` // per-call deadline
	MaxMsgMB   int    `yaml:"max_msg_mb"`
}

// AuthConfig holds API authentication settings. Empty keys disable auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// BreakerConfig holds circuit breaker settings for the upstream client.
type BreakerConfig struct {
	MaxRequests  uint32  `yaml:"max_requests"`
	IntervalSec  int     `yaml:"interval_sec"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	MinRequests  uint32  `yaml:"min_requests"`
	FailureRatio float64 `yaml:"failure_ratio"`
}

// AgentConfig holds the CLI agent settings.
type AgentConfig struct {
	Gateway  AgentGatewayConfig `yaml:"gateway"`
	LLM      LLMConfig          `yaml:"llm"`
	Workflow WorkflowConfig     `yaml:"workflow"`
	Memory   MemoryConfig       `yaml:"memory"`
}

// AgentGatewayConfig holds the agent's REST gateway client settings.
type AgentGatewayConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// LLMConfig holds the chat model settings.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// WorkflowConfig tunes the agent query pipeline.
type WorkflowConfig struct {
	DefaultCollection string  `yaml:"default_collection"`
	MaxExpansions     int     `yaml:"max_expansions"`
	SearchLimit       int     `yaml:"search_limit"`
	CacheTTLSec       int     `yaml:"cache_ttl_sec"`
	RateRPS           float64 `yaml:"rate_rps"`
	RateBurst         int     `yaml:"rate_burst"`
}

// MemoryConfig holds session memory settings.
type MemoryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	TopK           int    `yaml:"top_k"`
	Path           string `yaml:"path"` // empty = in-memory only
	EmbeddingModel string `yaml:"embedding_model"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.VectorDB.GRPC.Port <= 0 {
		c.VectorDB.GRPC.Port = 50051
	}
	if c.VectorDB.GRPC.ShutdownSec <= 0 {
		c.VectorDB.GRPC.ShutdownSec = 10
	}
	if c.VectorDB.GRPC.MaxMsgMB <= 0 {
		c.VectorDB.GRPC.MaxMsgMB = 32
	}
	if c.VectorDB.Database.Driver == "" {
		c.VectorDB.Database.Driver = "valkey"
	}
	if c.VectorDB.Database.ReadinessTimeout <= 0 {
		c.VectorDB.Database.ReadinessTimeout = 10
	}
	if c.VectorDB.Index.HNSWM <= 0 {
		c.VectorDB.Index.HNSWM = 32
	}
	if c.VectorDB.Index.HNSWEFConstruct <= 0 {
		c.VectorDB.Index.HNSWEFConstruct = 400
	}
	if c.VectorDB.Index.DefaultPageSize <= 0 {
		c.VectorDB.Index.DefaultPageSize = 20
	}
	if c.VectorDB.Index.MaxPageSize <= 0 {
		c.VectorDB.Index.MaxPageSize = 100
	}
	if c.VectorDB.Index.MaxBatchSize <= 0 {
		c.VectorDB.Index.MaxBatchSize = 100
	}
	if c.VectorDB.Storage.KeyPrefix == "" {
		c.VectorDB.Storage.KeyPrefix = "intramind:"
	}

	if c.Gateway.HTTP.Port <= 0 {
		c.Gateway.HTTP.Port = 64536
	}
	if c.Gateway.HTTP.ReadTimeoutSec <= 0 {
		c.Gateway.HTTP.ReadTimeoutSec = 10
	}
	if c.Gateway.HTTP.WriteTimeoutSec <= 0 {
		c.Gateway.HTTP.WriteTimeoutSec = 30
	}
	if c.Gateway.HTTP.ShutdownSec <= 0 {
		c.Gateway.HTTP.ShutdownSec = 10
	}
	if c.Gateway.Upstream.Addr == "" {
		c.Gateway.Upstream.Addr = "localhost:50051"
	}
	if c.Gateway.Upstream.TimeoutSec <= 0 {
		c.Gateway.Upstream.TimeoutSec = 30
	}
	if c.Gateway.Upstream.MaxMsgMB <= 0 {
		c.Gateway.Upstream.MaxMsgMB = 32
	}
	if c.Gateway.Breaker.MaxRequests == 0 {
		c.Gateway.Breaker.MaxRequests = 3
	}
	if c.Gateway.Breaker.IntervalSec <= 0 {
		c.Gateway.Breaker.IntervalSec = 60
	}
	if c.Gateway.Breaker.TimeoutSec <= 0 {
		c.Gateway.Breaker.TimeoutSec = 15
	}
	if c.Gateway.Breaker.MinRequests == 0 {
		c.Gateway.Breaker.MinRequests = 5
	}
	if c.Gateway.Breaker.FailureRatio <= 0 {
		c.Gateway.Breaker.FailureRatio = 0.6
	}

	if c.Agent.Gateway.BaseURL == "" {
		c.Agent.Gateway.BaseURL = "http://localhost:64536"
	}
	if c.Agent.Gateway.TimeoutSec <= 0 {
		c.Agent.Gateway.TimeoutSec = 30
	}
	if c.Agent.LLM.Model == "" {
		c.Agent.LLM.Model = "llama3.1"
	}
	if c.Agent.Workflow.MaxExpansions <= 0 {
		c.Agent.Workflow.MaxExpansions = 3
	}
	if c.Agent.Workflow.SearchLimit <= 0 {
		c.Agent.Workflow.SearchLimit = 6
	}
	if c.Agent.Workflow.CacheTTLSec <= 0 {
		c.Agent.Workflow.CacheTTLSec = 300
	}
	if c.Agent.Workflow.RateRPS <= 0 {
		c.Agent.Workflow.RateRPS = 2
	}
	if c.Agent.Workflow.RateBurst <= 0 {
		c.Agent.Workflow.RateBurst = 4
	}
	if c.Agent.Memory.TopK <= 0 {
		c.Agent.Memory.TopK = 3
	}
	if c.Agent.Memory.EmbeddingModel == "" {
		c.Agent.Memory.EmbeddingModel = "nomic-embed-text"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.VectorDB.GRPC.Port <= 0 || c.VectorDB.GRPC.Port > 65535 {
		return fmt.Errorf("vectordb.grpc.port must be between 1 and 65535, got %d", c.VectorDB.GRPC.Port)
	}
	if c.Gateway.HTTP.Port <= 0 || c.Gateway.HTTP.Port > 65535 {
		return fmt.Errorf("gateway.http.port must be between 1 and 65535, got %d", c.Gateway.HTTP.Port)
	}
	if len(c.VectorDB.Database.Addrs) == 0 {
		return fmt.Errorf("vectordb.database.addrs is required")
	}
	switch c.VectorDB.Database.Driver {
	case "", "valkey", "redis":
		// ok
	default:
		return fmt.Errorf("vectordb.database.driver must be \"valkey\" or \"redis\", got %q",
			c.VectorDB.Database.Driver)
	}
	switch c.VectorDB.Embedding.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"vectordb.embedding.budget.action must be \"warn\" or \"reject\", got %q",
			c.VectorDB.Embedding.Budget.Action,
		)
	}
	if r := c.Gateway.Breaker.FailureRatio; r < 0 || r > 1 {
		return fmt.Errorf("gateway.breaker.failure_ratio must be within [0, 1], got %v", r)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
