// Package config loads the YAML configuration file, layers .env and
// environment overrides on top, and validates provider API key shapes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"scout/internal/logging"
)

// ProviderConfig holds the credentials and model override for one provider.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StoreConfig locates the local database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Config is the full application configuration.
type Config struct {
	Anthropic ProviderConfig `yaml:"anthropic"`
	OpenAI    ProviderConfig `yaml:"openai"`
	Grok      ProviderConfig `yaml:"grok"`
	Gemini    ProviderConfig `yaml:"gemini"`

	// SkipUnhealthy makes the call strategy skip providers whose last
	// attempt failed. Off by default; every attempt still updates health.
	SkipUnhealthy bool `yaml:"skip_unhealthy"`

	Logging LoggingConfig `yaml:"logging"`
	Store   StoreConfig   `yaml:"store"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Store:   StoreConfig{Path: DefaultStorePath()},
	}
}

// DefaultConfigPath returns ~/.scout/config.yaml, falling back to the
// working directory when the home directory is unknown.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".scout", "config.yaml")
}

// DefaultStorePath returns ~/.scout/scout.db.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "scout.db"
	}
	return filepath.Join(home, ".scout", "scout.db")
}

// Load reads the YAML file at path, then applies .env and environment
// overrides. A missing file yields defaults, not an error.
func Load(path string) (*Config, error) {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			cfg.validateKeys()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.validateKeys()
	return cfg, nil
}

// Save writes the configuration back to path as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides layers environment variables over file values. Each
// provider checks its app-specific variable first, then the platform one.
func (c *Config) applyEnvOverrides() {
	c.Anthropic.APIKey = firstEnv(c.Anthropic.APIKey, "SCOUT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	c.OpenAI.APIKey = firstEnv(c.OpenAI.APIKey, "SCOUT_OPENAI_API_KEY", "OPENAI_API_KEY")
	c.Grok.APIKey = firstEnv(c.Grok.APIKey, "SCOUT_GROK_API_KEY", "XAI_API_KEY")
	c.Gemini.APIKey = firstEnv(c.Gemini.APIKey, "SCOUT_GEMINI_API_KEY", "GEMINI_API_KEY")

	if level := os.Getenv("SCOUT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if path := os.Getenv("SCOUT_DB"); path != "" {
		c.Store.Path = path
	}
}

func firstEnv(current string, names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return current
}

// keyPatterns describe the expected shape of each provider's API key.
var keyPatterns = map[string]*regexp.Regexp{
	"anthropic": regexp.MustCompile(`^sk-ant-[A-Za-z0-9_-]+$`),
	"openai":    regexp.MustCompile(`^sk-[A-Za-z0-9_-]+$`),
	"grok":      regexp.MustCompile(`^xai-[A-Za-z0-9_-]+$`),
	"gemini":    regexp.MustCompile(`^AIza[A-Za-z0-9_-]+$`),
}

// validateKeys warns about keys that do not match the provider's known
// format. Keys are never logged in full; a malformed key is still passed
// through so the provider can reject it itself.
func (c *Config) validateKeys() {
	log := logging.Named("config")
	for name, key := range map[string]string{
		"anthropic": c.Anthropic.APIKey,
		"openai":    c.OpenAI.APIKey,
		"grok":      c.Grok.APIKey,
		"gemini":    c.Gemini.APIKey,
	} {
		if key == "" {
			continue
		}
		if !keyPatterns[name].MatchString(key) {
			log.Warn("api key does not match expected format",
				zap.String("provider", name),
				zap.String("key", MaskKey(key)))
		}
	}
}

// MaskKey keeps only the first and last few characters of a secret.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
