package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SCOUT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY",
		"SCOUT_OPENAI_API_KEY", "OPENAI_API_KEY",
		"SCOUT_GROK_API_KEY", "XAI_API_KEY",
		"SCOUT_GEMINI_API_KEY", "GEMINI_API_KEY",
		"SCOUT_LOG_LEVEL", "SCOUT_DB",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Empty(t, cfg.Anthropic.APIKey)
}

func TestLoadParsesYAML(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
anthropic:
  api_key: sk-ant-file-key
  model: claude-sonnet-4-20250514
grok:
  api_key: xai-file-key
logging:
  level: debug
store:
  path: /tmp/custom.db
skip_unhealthy: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-file-key", cfg.Anthropic.APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Anthropic.Model)
	assert.Equal(t, "xai-file-key", cfg.Grok.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/custom.db", cfg.Store.Path)
	assert.True(t, cfg.SkipUnhealthy)
}

func TestEnvOverridesFile(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openai:\n  api_key: sk-from-file\n"), 0o600))

	t.Setenv("OPENAI_API_KEY", "sk-from-platform-env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-platform-env", cfg.OpenAI.APIKey)

	// The app-specific variable wins over the platform one.
	t.Setenv("SCOUT_OPENAI_API_KEY", "sk-from-scout-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-scout-env", cfg.OpenAI.APIKey)
}

func TestLogLevelAndDBOverrides(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("SCOUT_LOG_LEVEL", "warn")
	t.Setenv("SCOUT_DB", "/tmp/override.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/override.db", cfg.Store.Path)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not valid\n :::"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	clearKeyEnv(t)

	cfg := DefaultConfig()
	cfg.Gemini.APIKey = "AIzaSyTestKeyValue1234"
	cfg.SkipUnhealthy = true

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyTestKeyValue1234", got.Gemini.APIKey)
	assert.True(t, got.SkipUnhealthy)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", MaskKey("short"))
	assert.Equal(t, "sk-a...wxyz", MaskKey("sk-ant-api03-abcdwxyz"))
}

func TestKeyPatterns(t *testing.T) {
	tests := []struct {
		provider string
		key      string
		valid    bool
	}{
		{"anthropic", "sk-ant-api03-abc_123", true},
		{"anthropic", "sk-wrong-prefix", false},
		{"openai", "sk-proj-abc123", true},
		{"openai", "not-a-key", false},
		{"grok", "xai-abc123", true},
		{"grok", "sk-abc123", false},
		{"gemini", "AIzaSyExample123", true},
		{"gemini", "gemini-key", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, keyPatterns[tt.provider].MatchString(tt.key),
			"%s key %q", tt.provider, tt.key)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	clearKeyEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))

	reloaded := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "debug", cfg.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
