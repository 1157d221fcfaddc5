package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Extraction  ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	PO          POConfig          `yaml:"po" mapstructure:"po"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Matcher     MatcherConfig     `yaml:"matcher" mapstructure:"matcher"`
	Verify      VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	Discrepancy DiscrepancyConfig `yaml:"discrepancy" mapstructure:"discrepancy"`
	Policy      PolicyConfig      `yaml:"policy" mapstructure:"policy"`
	Orchestrate OrchestrateConfig `yaml:"orchestrate" mapstructure:"orchestrate"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the result log database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings for document extraction.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ExtractionConfig configures the extraction step.
type ExtractionConfig struct {
	// MaxAttempts bounds rate-limit retries against the extraction service.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	// CooldownSecs is the fixed wait between rate-limited attempts.
	CooldownSecs int `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
	// RequestsPerMinute throttles outbound extraction calls. 0 disables.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	// CleanCap and DegradedCap bound extraction confidence per doc quality.
	CleanCap    float64 `yaml:"clean_cap" mapstructure:"clean_cap"`
	DegradedCap float64 `yaml:"degraded_cap" mapstructure:"degraded_cap"`
	// DegradedHints are filename substrings that mark a document degraded.
	DegradedHints []string `yaml:"degraded_hints" mapstructure:"degraded_hints"`
}

// POConfig locates the purchase order reference data.
type POConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SearchConfig configures the PO similarity index.
type SearchConfig struct {
	// Provider selects the embedder: "hash" (offline, deterministic) or
	// "ollama" (HTTP embedding server).
	Provider      string `yaml:"provider" mapstructure:"provider"`
	OllamaBaseURL string `yaml:"ollama_base_url" mapstructure:"ollama_base_url"`
	OllamaModel   string `yaml:"ollama_model" mapstructure:"ollama_model"`
}

// MatcherConfig holds the two-stage PO matcher thresholds.
type MatcherConfig struct {
	TopK              int     `yaml:"top_k" mapstructure:"top_k"`
	DistanceThreshold float64 `yaml:"distance_threshold" mapstructure:"distance_threshold"`
	VectorWeight      float64 `yaml:"vector_weight" mapstructure:"vector_weight"`
	SupplierWeight    float64 `yaml:"supplier_weight" mapstructure:"supplier_weight"`
	FuzzyCap          float64 `yaml:"fuzzy_cap" mapstructure:"fuzzy_cap"`
	CandidateFloor    float64 `yaml:"candidate_floor" mapstructure:"candidate_floor"`
	AcceptThreshold   float64 `yaml:"accept_threshold" mapstructure:"accept_threshold"`
	ExactConfidence   float64 `yaml:"exact_confidence" mapstructure:"exact_confidence"`
}

// VerifyConfig holds the arithmetic verification tolerance.
type VerifyConfig struct {
	MathTolerance float64 `yaml:"math_tolerance" mapstructure:"math_tolerance"`
}

// DiscrepancyConfig holds line-item alignment and variance thresholds.
type DiscrepancyConfig struct {
	AlignmentThreshold float64 `yaml:"alignment_threshold" mapstructure:"alignment_threshold"`
	PriceTolerance     float64 `yaml:"price_tolerance" mapstructure:"price_tolerance"`
	HighVariance       float64 `yaml:"high_variance" mapstructure:"high_variance"`
}

// PolicyConfig holds the resolution policy gates.
type PolicyConfig struct {
	ConfidenceFloor float64 `yaml:"confidence_floor" mapstructure:"confidence_floor"`
	ConfidenceCap   float64 `yaml:"confidence_cap" mapstructure:"confidence_cap"`
}

// OrchestrateConfig bounds the verification retry loop.
type OrchestrateConfig struct {
	MaxVerifyRetries int `yaml:"max_verify_retries" mapstructure:"max_verify_retries"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	InvoiceDir            string `yaml:"invoice_dir" mapstructure:"invoice_dir"`
	MaxConcurrentInvoices int    `yaml:"max_concurrent_invoices" mapstructure:"max_concurrent_invoices"`
}

// ServerConfig configures the results API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "recon.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("extraction.max_attempts", 3)
	v.SetDefault("extraction.cooldown_secs", 65)
	v.SetDefault("extraction.requests_per_minute", 0)
	v.SetDefault("extraction.clean_cap", 0.99)
	v.SetDefault("extraction.degraded_cap", 0.88)
	v.SetDefault("extraction.degraded_hints", []string{"scanned", "scan", "fax", "photo"})
	v.SetDefault("po.path", "data/purchase_orders.json")
	v.SetDefault("search.provider", "hash")
	v.SetDefault("search.ollama_base_url", "http://localhost:11434/api/embed")
	v.SetDefault("search.ollama_model", "nomic-embed-text")
	v.SetDefault("matcher.top_k", 3)
	v.SetDefault("matcher.distance_threshold", 0.40)
	v.SetDefault("matcher.vector_weight", 0.4)
	v.SetDefault("matcher.supplier_weight", 0.6)
	v.SetDefault("matcher.fuzzy_cap", 0.85)
	v.SetDefault("matcher.candidate_floor", 0.45)
	v.SetDefault("matcher.accept_threshold", 0.60)
	v.SetDefault("matcher.exact_confidence", 0.95)
	v.SetDefault("verify.math_tolerance", 0.01)
	v.SetDefault("discrepancy.alignment_threshold", 0.6)
	v.SetDefault("discrepancy.price_tolerance", 0.05)
	v.SetDefault("discrepancy.high_variance", 0.15)
	v.SetDefault("policy.confidence_floor", 0.80)
	v.SetDefault("policy.confidence_cap", 0.95)
	v.SetDefault("orchestrate.max_verify_retries", 1)
	v.SetDefault("batch.invoice_dir", "data/invoices")
	v.SetDefault("batch.max_concurrent_invoices", 1)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
