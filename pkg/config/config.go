package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath      = "config.yaml"
	defaultPort            = "8080"
	defaultShutdownSeconds = 30
	defaultModel           = "anthropic/claude-3.5-sonnet"
	defaultTemperature     = 0.2
	defaultMaxTokens       = 900
	defaultTimeoutSeconds  = 60
	defaultSiteURL         = "http://localhost:3000"
	defaultAppName         = "NoorAi"
)

type Config struct {
	OpenRouterAPIKey    string
	DatabaseURL         string
	JWTSecret           string
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceCreator  string
	StripePricePro      string
	AppURL              string

	Server     ServerConfig     `yaml:"server"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
}

type ServerConfig struct {
	Port            string `yaml:"port"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

type OpenRouterConfig struct {
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	SiteURL        string  `yaml:"site_url"`
	AppName        string  `yaml:"app_name"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		OpenRouterAPIKey:    os.Getenv("OPENROUTER_API_KEY"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceCreator:  os.Getenv("STRIPE_PRICE_ID_CREATOR"),
		StripePricePro:      os.Getenv("STRIPE_PRICE_ID_PRO"),
		AppURL:              os.Getenv("APP_URL"),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	return cfg
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(cfg)
	applyOpenRouterDefaults(cfg)

	if cfg.AppURL == "" {
		cfg.AppURL = defaultSiteURL
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = getEnvOrDefault("PORT", defaultPort)
	}
	if cfg.Server.ShutdownSeconds == 0 {
		cfg.Server.ShutdownSeconds = defaultShutdownSeconds
	}
}

func applyOpenRouterDefaults(cfg *Config) {
	if cfg.OpenRouter.Model == "" {
		cfg.OpenRouter.Model = getEnvOrDefault("OPENROUTER_MODEL", defaultModel)
	}
	if cfg.OpenRouter.Temperature == 0 {
		cfg.OpenRouter.Temperature = defaultTemperature
	}
	if cfg.OpenRouter.MaxTokens == 0 {
		cfg.OpenRouter.MaxTokens = defaultMaxTokens
	}
	if cfg.OpenRouter.TimeoutSeconds == 0 {
		cfg.OpenRouter.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.OpenRouter.SiteURL == "" {
		cfg.OpenRouter.SiteURL = getEnvOrDefault("OPENROUTER_SITE_URL", defaultSiteURL)
	}
	if cfg.OpenRouter.AppName == "" {
		cfg.OpenRouter.AppName = defaultAppName
	}
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

func (c *Config) OpenRouterTimeout() time.Duration {
	return time.Duration(c.OpenRouter.TimeoutSeconds) * time.Second
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
