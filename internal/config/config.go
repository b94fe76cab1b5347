package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"` // per-request deadline, covers the model call
}

type LogConfig struct {
	Level    string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format   string `yaml:"format" validate:"omitempty,oneof=json console"`
	Sampling bool   `yaml:"sampling"`
}

type AIConfig struct {
	Provider    string  `yaml:"provider" validate:"omitempty,oneof=openai gemini noop"`
	OpenAIKey   string  `yaml:"openai_key"`
	OpenAIURL   string  `yaml:"openai_url"` // any OpenAI-compatible base URL
	GeminiKey   string  `yaml:"gemini_key"`
	GeminiURL   string  `yaml:"gemini_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=memory redis postgres"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // session expiry in redis
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RelayConfig struct {
	// StrictConfirm gates every non-chat command behind explicit user
	// confirmation. Off, the relay auto-populates commands freely.
	StrictConfirm bool `yaml:"strict_confirm"`
}

type SessionConfig struct {
	CookieName   string        `yaml:"cookie_name"`
	CookieSecret string        `yaml:"cookie_secret"`
	SecureCookie bool          `yaml:"secure_cookie"`
	TTL          time.Duration `yaml:"ttl"`
}

type RateConfig struct {
	// Limit of gateway calls per session per window; 0 disables limiting.
	// Enforced only when redis is configured.
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	AI       AIConfig       `yaml:"ai"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Relay    RelayConfig    `yaml:"relay"`
	Session  SessionConfig  `yaml:"session"`
	Rate     RateConfig     `yaml:"rate"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	// Local .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Env overrides win over the file so keys never need to live on disk.
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("SESSION_COOKIE_SECRET"); v != "" {
		cfg.Session.CookieSecret = v
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Timeout <= 0 {
		cfg.Server.Timeout = 60 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 1024
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL, 24*time.Hour)
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "map_session"
	}
	cfg.Session.TTL = normalizeTTL(cfg.Session.TTL, 180*24*time.Hour)
	if cfg.Rate.Window <= 0 {
		cfg.Rate.Window = time.Minute
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// Minimal cross-field validation
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return nil, errors.New("ai.openai_key (or OPENAI_API_KEY) is required for provider=openai")
		}
	case "gemini":
		if cfg.AI.GeminiKey == "" {
			return nil, errors.New("ai.gemini_key (or GEMINI_API_KEY) is required for provider=gemini")
		}
	}
	if cfg.Store.Backend == "redis" && cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required for store.backend=redis")
	}
	if cfg.Store.Backend == "postgres" && cfg.Database.URL == "" {
		return nil, errors.New("database.url is required for store.backend=postgres")
	}
	if cfg.Session.CookieSecret == "" {
		return nil, errors.New("session.cookie_secret (or SESSION_COOKIE_SECRET) is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
