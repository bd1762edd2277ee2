package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	DB        DatabaseConfig
	Imagery   ImageryConfig
	Scene     SceneConfig
	Analysis  AnalysisConfig
	RateLimit RateLimitConfig
	Notify    NotifyConfig
	Yield     YieldConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Path string
}

type ImageryConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type SceneConfig struct {
	Selection     string
	CacheTTL      time.Duration
	PurgeInterval time.Duration
}

type AnalysisConfig struct {
	WindowDays int
	Workers    int
}

type RateLimitConfig struct {
	RPS   int
	Burst int
}

type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

type YieldConfig struct {
	ProfilesPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/cropsight.db"),
		},
		Imagery: ImageryConfig{
			BaseURL:      getEnv("IMAGERY_BASE_URL", "http://localhost:9090"),
			TokenURL:     getEnv("IMAGERY_TOKEN_URL", ""),
			ClientID:     getEnv("IMAGERY_CLIENT_ID", ""),
			ClientSecret: getEnv("IMAGERY_CLIENT_SECRET", ""),
			Timeout:      getEnvDuration("IMAGERY_TIMEOUT", 15*time.Second),
		},
		Scene: SceneConfig{
			Selection:     getEnv("SCENE_SELECTION", "most_recent"),
			CacheTTL:      getEnvDuration("SCENE_CACHE_TTL", 6*time.Hour),
			PurgeInterval: getEnvDuration("SCENE_PURGE_INTERVAL", time.Hour),
		},
		Analysis: AnalysisConfig{
			WindowDays: getEnvInt("ANALYSIS_WINDOW_DAYS", 30),
			Workers:    getEnvInt("ANALYSIS_WORKERS", 10),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvInt("RATE_LIMIT_RPS", 10),
			Burst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			Timeout:    getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
		Yield: YieldConfig{
			ProfilesPath: getEnv("YIELD_PROFILES_PATH", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Imagery.BaseURL == "" {
		return fmt.Errorf("imagery base URL must be set")
	}
	if c.Imagery.ClientID != "" && c.Imagery.TokenURL == "" {
		return fmt.Errorf("imagery token URL must be set when a client ID is configured")
	}
	if c.Imagery.ClientID != "" && c.Imagery.ClientSecret == "" {
		return fmt.Errorf("imagery client secret must be set when a client ID is configured")
	}

	if c.Scene.Selection != "most_recent" && c.Scene.Selection != "least_cloudy" {
		return fmt.Errorf("invalid scene selection: %s", c.Scene.Selection)
	}
	if c.Scene.CacheTTL < time.Minute {
		return fmt.Errorf("scene cache TTL must be at least 1 minute")
	}
	if c.Scene.PurgeInterval < time.Minute {
		return fmt.Errorf("scene purge interval must be at least 1 minute")
	}

	if c.Analysis.WindowDays < 1 {
		return fmt.Errorf("analysis window must be at least 1 day")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis worker count must be at least 1")
	}

	if c.RateLimit.RPS < 1 {
		return fmt.Errorf("rate limit rps must be at least 1")
	}
	if c.RateLimit.Burst < c.RateLimit.RPS {
		return fmt.Errorf("rate limit burst must be at least the rps")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
