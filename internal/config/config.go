// Package config loads the per-environment YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the sommelier configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Store        StoreConfig        `yaml:"store"`
	Retriever    RetrieverConfig    `yaml:"retriever"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	Synthesis    SynthesisConfig    `yaml:"synthesis"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
	Cache        CacheConfig        `yaml:"cache"`
	Conversation ConversationConfig `yaml:"conversation"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Hours        HoursConfig        `yaml:"hours"`
	Auth         AuthConfig         `yaml:"auth"`
	Logging      LoggingConfig      `yaml:"logging"`
	Tracing      TracingConfig      `yaml:"tracing"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds the Valkey/Redis connection settings.
type StoreConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RetrieverConfig selects the passage retrieval backend.
type RetrieverConfig struct {
	Driver      string         `yaml:"driver"` // store, pgvector (default: store)
	Hybrid      bool           `yaml:"hybrid"` // KNN + BM25 fusion when the store supports it
	EnsureIndex bool           `yaml:"ensure_index"`
	Postgres    PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds the pgvector backend settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	MaxConns int32  `yaml:"max_conns"`
}

// ProviderConfig holds OpenAI-compatible provider credentials.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// EmbeddingConfig holds query embedding settings.
type EmbeddingConfig struct {
	Provider         ProviderConfig `yaml:"provider"`
	Model            string         `yaml:"model"`
	Dimensions       int            `yaml:"dimensions"`
	QueryInstruction string         `yaml:"query_instruction"`
	CacheTTLSec      int            `yaml:"cache_ttl_sec"` // 0 disables the embedding cache
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// SynthesisConfig holds answer synthesis settings.
type SynthesisConfig struct {
	Provider       ProviderConfig `yaml:"provider"`
	Name           string         `yaml:"name"` // budget key and metrics label (default: openai)
	Model          string         `yaml:"model"`
	MaxTokens      int            `yaml:"max_tokens"`
	Temperature    float32        `yaml:"temperature"`
	TimeoutSec     int            `yaml:"timeout_sec"`
	RateLimitRPS   float64        `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst int            `yaml:"rate_limit_burst"`
	Budget         BudgetConfig   `yaml:"budget"`
}

// PipelineConfig tunes retrieval and context assembly.
type PipelineConfig struct {
	RetrievalTimeoutMs       int            `yaml:"retrieval_timeout_ms"`
	K                        map[string]int `yaml:"k"` // overrides keyed "domain" or "domain/subtype"
	MaxDocuments             int            `yaml:"max_documents"`
	MaxDisambiguationOptions int            `yaml:"max_disambiguation_options"`
	InsufficientKnowledge    string         `yaml:"insufficient_knowledge"`
	Apology                  string         `yaml:"apology"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	TTLSec     int  `yaml:"ttl_sec"`
	MaxEntries int  `yaml:"max_entries"`
	Remote     bool `yaml:"remote"` // share answers between replicas through the store
}

// ConversationConfig holds clarification tracking settings.
type ConversationConfig struct {
	MaxSessions   int      `yaml:"max_sessions"`
	SessionTTLSec int      `yaml:"session_ttl_sec"`
	Markers       []string `yaml:"markers"`
}

// CatalogConfig locates the entity catalog. An empty path selects the built-in catalog.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// DayHoursConfig is one weekday's opening window.
type DayHoursConfig struct {
	Open   string `yaml:"open"`  // HH:MM
	Close  string `yaml:"close"` // HH:MM
	Closed bool   `yaml:"closed"`
}

// HoursConfig is the weekly tasting room schedule. Days are keyed by lowercase weekday name.
type HoursConfig struct {
	Timezone string                    `yaml:"timezone"`
	Note     string                    `yaml:"note"`
	Days     map[string]DayHoursConfig `yaml:"days"`
}

// TracingConfig holds OpenTelemetry settings. An empty endpoint disables tracing.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Weekdays maps schedule keys to time.Weekday.
var Weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "valkey"
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Retriever.Driver == "" {
		c.Retriever.Driver = "store"
	}
	if c.Retriever.Postgres.Table == "" {
		c.Retriever.Postgres.Table = "passages"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Synthesis.Name == "" {
		c.Synthesis.Name = "openai"
	}
	if c.Synthesis.Model == "" {
		c.Synthesis.Model = "gpt-4o-mini"
	}
	if c.Synthesis.MaxTokens <= 0 {
		c.Synthesis.MaxTokens = 400
	}
	if c.Synthesis.TimeoutSec <= 0 {
		c.Synthesis.TimeoutSec = 30
	}
	if c.Synthesis.Budget.Action == "" {
		c.Synthesis.Budget.Action = "warn"
	}
	if c.Pipeline.RetrievalTimeoutMs <= 0 {
		c.Pipeline.RetrievalTimeoutMs = 5000
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 600
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 100
	}
	if c.Conversation.MaxSessions <= 0 {
		c.Conversation.MaxSessions = 10000
	}
	if c.Conversation.SessionTTLSec <= 0 {
		c.Conversation.SessionTTLSec = 1800
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Store.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("store.driver must be \"valkey\" or \"redis\", got %q", c.Store.Driver)
	}
	if len(c.Store.Addrs) == 0 {
		return fmt.Errorf("store.addrs is required")
	}
	switch c.Retriever.Driver {
	case "store":
	case "pgvector":
		if c.Retriever.Postgres.DSN == "" {
			return fmt.Errorf("retriever.postgres.dsn is required for the pgvector driver")
		}
	default:
		return fmt.Errorf("retriever.driver must be \"store\" or \"pgvector\", got %q", c.Retriever.Driver)
	}
	switch c.Synthesis.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("synthesis.budget.action must be \"warn\" or \"reject\", got %q", c.Synthesis.Budget.Action)
	}
	if c.Synthesis.RateLimitRPS < 0 {
		return fmt.Errorf("synthesis.rate_limit_rps must not be negative")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	for key, k := range c.Pipeline.K {
		if k <= 0 {
			return fmt.Errorf("pipeline.k.%s must be positive, got %d", key, k)
		}
	}
	return c.Hours.validate()
}

func (h HoursConfig) validate() error {
	if h.Timezone != "" {
		if _, err := time.LoadLocation(h.Timezone); err != nil {
			return fmt.Errorf("hours.timezone: %w", err)
		}
	}
	for name, d := range h.Days {
		if _, ok := Weekdays[strings.ToLower(name)]; !ok {
			return fmt.Errorf("hours.days: unknown weekday %q", name)
		}
		if d.Closed {
			continue
		}
		if !clockRegex.MatchString(d.Open) || !clockRegex.MatchString(d.Close) {
			return fmt.Errorf("hours.days.%s: open and close must be HH:MM", name)
		}
		if d.Close <= d.Open {
			return fmt.Errorf("hours.days.%s: close must be after open", name)
		}
	}
	return nil
}

// Location returns the schedule's time zone, UTC when unset.
func (h HoursConfig) Location() *time.Location {
	if h.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Duration helpers.

func (h HTTPConfig) ReadTimeout() time.Duration  { return time.Duration(h.ReadTimeoutSec) * time.Second }
func (h HTTPConfig) WriteTimeout() time.Duration { return time.Duration(h.WriteTimeoutSec) * time.Second }
func (h HTTPConfig) ShutdownTimeout() time.Duration {
	return time.Duration(h.ShutdownSec) * time.Second
}
func (s StoreConfig) ReadyTimeout() time.Duration { return time.Duration(s.ReadinessTimeout) * time.Second }
func (s SynthesisConfig) Timeout() time.Duration  { return time.Duration(s.TimeoutSec) * time.Second }
func (p PipelineConfig) RetrievalTimeout() time.Duration {
	return time.Duration(p.RetrievalTimeoutMs) * time.Millisecond
}
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }
func (c ConversationConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}
func (e EmbeddingConfig) CacheTTL() time.Duration { return time.Duration(e.CacheTTLSec) * time.Second }

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
