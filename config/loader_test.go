package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Debate.MaxTurns)
	assert.Equal(t, 150, cfg.Debate.WordsPerMinute)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Debate.EnableFactCheck)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
debate:
  max_turns: 8
  research_depth: advanced
database:
  driver: postgres
  dsn: "host=localhost user=agora dbname=agora"
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Debate.MaxTurns)
	assert.Equal(t, "advanced", cfg.Debate.ResearchDepth)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep defaults.
	assert.Equal(t, 150, cfg.Debate.WordsPerMinute)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader().WithConfigPath("does-not-exist.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Debate.MaxTurns)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AGORA_DEBATE_MAX_TURNS", "10")
	t.Setenv("AGORA_DATABASE_DSN", ":memory:")
	t.Setenv("AGORA_DEBATE_MIN_DISPLAY", "2s")
	t.Setenv("AGORA_DEBATE_ENABLE_SPEECH", "true")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Debate.MaxTurns)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "2s", cfg.Debate.MinDisplay.String())
	assert.True(t, cfg.Debate.EnableSpeech)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Setenv("AGORA_DEBATE_MAX_TURNS", "1")

	_, err := NewLoader().Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_turns")
}

func TestValidateRejectsOddTurns(t *testing.T) {
	t.Setenv("AGORA_DEBATE_MAX_TURNS", "5")

	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("AGORA_DATABASE_DRIVER", "oracle")

	_, err := NewLoader().Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "driver")
}
