package config

import "time"

// DefaultConfig returns the baseline configuration. Every field can be
// overridden by the YAML file and then by environment variables.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			MetricsPort:     9090,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Debate: DebateConfig{
			MaxTurns:           6,
			TurnSeconds:        120,
			ResearchDepth:      "basic",
			WordsPerMinute:     150,
			MinDisplay:         15 * time.Second,
			VotingWindow:       5 * time.Second,
			HistoryTokenBudget: 6000,
			EnableFactCheck:    true,
			EnableSpeech:       false,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "agora.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr: "",
			DB:   0,
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o",
			Timeout: 120 * time.Second,
		},
		Search: SearchConfig{
			Timeout:       30 * time.Second,
			RatePerSecond: 1,
		},
		Speech: SpeechConfig{
			Timeout:     60 * time.Second,
			ChunkLimit:  4096,
			BlobDir:     "data/audio",
			BlobBaseURL: "/audio",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "agora",
			SampleRate:   1.0,
		},
	}
}
