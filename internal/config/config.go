package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const defaultTTL = 6 * time.Hour

type CacheConfig struct {
	Backend       string `yaml:"backend"` // "sqlite", "redis" or "memory"
	TTL           string `yaml:"ttl"`
	SchemaVersion int    `yaml:"schema_version"`
	RedisURL      string `yaml:"redis_url"`
	MemorySize    int    `yaml:"memory_size"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "openai"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[string]string{
	"gemini": "gemini-2.5-flash",
	"openai": "gpt-4o-mini",
}

// ModelName returns the configured model, or the provider's default.
func (a AIConfig) ModelName() string {
	if a.Model != "" {
		return a.Model
	}
	if a.Provider == "" {
		return defaultModels["gemini"]
	}
	return defaultModels[a.Provider]
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Cache CacheConfig `yaml:"cache"`
	AI    AIConfig    `yaml:"ai"`
	Log   LogConfig   `yaml:"log"`
}

// AIEnabled returns true if an API key is available from config or env.
func (c *Config) AIEnabled() bool {
	return c.AIKey() != ""
}

// AIKey returns the resolved API key: config first, then TECHPULSE_AI_KEY,
// then the provider's conventional variable.
func (c *Config) AIKey() string {
	if c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	if k := os.Getenv("TECHPULSE_AI_KEY"); k != "" {
		return k
	}
	switch c.AI.Provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}

// TTL returns how long a cached category stays fresh.
func (c *Config) TTL() time.Duration {
	d, err := parseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return defaultTTL
	}
	return d
}

// CacheTarget returns the backend-specific location of the cache.
func (c *Config) CacheTarget() string {
	switch c.Cache.Backend {
	case "redis":
		return c.Cache.RedisURL
	case "memory":
		return ""
	default:
		return CachePath()
	}
}

// parseDuration accepts Go durations plus an "Nd" day suffix.
func parseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "techpulse", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "techpulse", "techpulse.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "techpulse", "techpulse.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (DefaultConfigPath when empty). Keys the file
// omits keep their embedded default values.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults are still usable.
			_ = writeDefaults(path)
			cfg.AI.Model = cfg.AI.ModelName()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	cfg.AI.Model = cfg.AI.ModelName()

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o600)
}

func validate(cfg *Config) error {
	switch cfg.Cache.Backend {
	case "sqlite", "memory":
	case "redis":
		u, err := url.Parse(cfg.Cache.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("cache.redis_url must be a redis:// or rediss:// url, got %q", cfg.Cache.RedisURL)
		}
	default:
		return fmt.Errorf("unknown cache backend %q (valid: sqlite, redis, memory)", cfg.Cache.Backend)
	}

	if cfg.Cache.TTL != "" {
		if d, err := parseDuration(cfg.Cache.TTL); err != nil || d <= 0 {
			return fmt.Errorf("cache.ttl: invalid duration %q", cfg.Cache.TTL)
		}
	}
	if cfg.Cache.SchemaVersion < 1 {
		return fmt.Errorf("cache.schema_version must be positive, got %d", cfg.Cache.SchemaVersion)
	}

	switch cfg.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown AI provider %q (valid: gemini, openai)", cfg.AI.Provider)
	}
	if cfg.AI.BaseURL != "" {
		u, err := url.Parse(cfg.AI.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("ai.base_url must be an http(s) url, got %q", cfg.AI.BaseURL)
		}
	}
	return nil
}
