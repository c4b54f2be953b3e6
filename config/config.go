// Package config provides unified configuration loading for the Agora
// service: defaults, YAML file, then environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("AGORA").
//	    Load()
//
// Precedence: defaults → YAML file → environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/agoralive/agora/types"
)

// Config is the complete service configuration.
type Config struct {
	// Server holds the HTTP server settings.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Debate holds defaults applied to new debates.
	Debate DebateConfig `yaml:"debate" env:"DEBATE"`

	// Database holds the relational store settings.
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Redis holds the change-notification backend settings.
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// LLM holds the text-generation collaborator settings.
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Search holds the research-lookup collaborator settings.
	Search SearchConfig `yaml:"search" env:"SEARCH"`

	// Speech holds the speech-synthesis collaborator settings.
	Speech SpeechConfig `yaml:"speech" env:"SPEECH"`

	// Auth holds API authentication settings.
	Auth AuthConfig `yaml:"auth" env:"AUTH"`

	// Log holds logging settings.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry holds OpenTelemetry settings.
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DebateConfig holds engine pacing defaults. The per-debate knobs
// (types.DebateConfig) override MaxTurns/TurnSeconds/ResearchDepth at
// creation time; the pacing knobs here are engine-wide.
type DebateConfig struct {
	// MaxTurns is the default total turn count for new debates.
	MaxTurns int `yaml:"max_turns" env:"MAX_TURNS"`

	// TurnSeconds is the default per-turn time budget.
	TurnSeconds int `yaml:"turn_seconds" env:"TURN_SECONDS"`

	// ResearchDepth is the default research tier: basic or advanced.
	ResearchDepth string `yaml:"research_depth" env:"RESEARCH_DEPTH"`

	// WordsPerMinute is the assumed spoken delivery rate used to pace
	// turn publication against human consumption.
	WordsPerMinute int `yaml:"words_per_minute" env:"WORDS_PER_MINUTE"`

	// MinDisplay is the floor for the per-turn display delay.
	MinDisplay time.Duration `yaml:"min_display" env:"MIN_DISPLAY"`

	// VotingWindow is the fixed window kept open for audience votes
	// between the live and summarizing phases.
	VotingWindow time.Duration `yaml:"voting_window" env:"VOTING_WINDOW"`

	// HistoryTokenBudget caps the prior-turn history included in a
	// generation prompt.
	HistoryTokenBudget int `yaml:"history_token_budget" env:"HISTORY_TOKEN_BUDGET"`

	// EnableFactCheck toggles the claim-verification pipeline by default.
	EnableFactCheck bool `yaml:"enable_fact_check" env:"ENABLE_FACT_CHECK"`

	// EnableSpeech toggles per-turn speech synthesis by default.
	EnableSpeech bool `yaml:"enable_speech" env:"ENABLE_SPEECH"`
}

// DatabaseConfig holds relational store settings.
type DatabaseConfig struct {
	// Driver selects the backend: sqlite, postgres, or mysql.
	Driver string `yaml:"driver" env:"DRIVER"`

	// DSN is the driver-specific connection string. For sqlite this is a
	// file path (or ":memory:" for tests).
	DSN string `yaml:"dsn" env:"DSN"`

	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// RedisConfig holds change-notification backend settings. When Addr is
// empty, the engine falls back to the in-process notifier.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// LLMConfig holds the text-generation collaborator settings.
type LLMConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Model   string        `yaml:"model" env:"MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// SearchConfig holds the research-lookup collaborator settings. When
// APIKey is empty, research degrades to empty bundles.
type SearchConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// RatePerSecond limits outbound research lookups.
	RatePerSecond float64 `yaml:"rate_per_second" env:"RATE_PER_SECOND"`
}

// SpeechConfig holds the speech-synthesis collaborator settings.
type SpeechConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Model   string        `yaml:"model" env:"MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// ChunkLimit is the maximum input length per synthesis request;
	// longer arguments are split on sentence boundaries and the audio
	// concatenated in order.
	ChunkLimit int `yaml:"chunk_limit" env:"CHUNK_LIMIT"`

	// BlobDir is where synthesized audio is stored by the file blob
	// store.
	BlobDir string `yaml:"blob_dir" env:"BLOB_DIR"`

	// BlobBaseURL is the public URL prefix resolved for stored audio.
	BlobBaseURL string `yaml:"blob_base_url" env:"BLOB_BASE_URL"`
}

// AuthConfig holds API authentication settings. When Secret is empty,
// authentication is disabled.
type AuthConfig struct {
	Secret string `yaml:"secret" env:"SECRET"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console.
	Format string `yaml:"format" env:"FORMAT"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// DebateDefaults converts the configured defaults into a per-debate
// config, used when a create request leaves fields unset.
func (c DebateConfig) DebateDefaults() types.DebateConfig {
	return types.DebateConfig{
		MaxTurns:        c.MaxTurns,
		TurnSeconds:     c.TurnSeconds,
		ResearchDepth:   types.ResearchDepth(c.ResearchDepth),
		EnableFactCheck: c.EnableFactCheck,
		EnableSpeech:    c.EnableSpeech,
	}
}

// Validate checks the configuration for values the engine cannot run
// with.
func (c *Config) Validate() error {
	if c.Debate.MaxTurns < 2 {
		return fmt.Errorf("debate.max_turns must be >= 2, got %d", c.Debate.MaxTurns)
	}
	if c.Debate.MaxTurns%2 != 0 {
		return fmt.Errorf("debate.max_turns must be even, got %d", c.Debate.MaxTurns)
	}
	if c.Debate.WordsPerMinute <= 0 {
		return fmt.Errorf("debate.words_per_minute must be positive, got %d", c.Debate.WordsPerMinute)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres, or mysql, got %q", c.Database.Driver)
	}
	switch types.ResearchDepth(c.Debate.ResearchDepth) {
	case types.ResearchBasic, types.ResearchAdvanced:
	default:
		return fmt.Errorf("debate.research_depth must be basic or advanced, got %q", c.Debate.ResearchDepth)
	}
	return nil
}
