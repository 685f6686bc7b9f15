package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != defaultPort {
		t.Errorf("Port = %q, want %q", cfg.Server.Port, defaultPort)
	}
	if cfg.Server.ShutdownSeconds != defaultShutdownSeconds {
		t.Errorf("ShutdownSeconds = %d, want %d", cfg.Server.ShutdownSeconds, defaultShutdownSeconds)
	}
	if cfg.OpenRouter.Model != defaultModel {
		t.Errorf("Model = %q, want %q", cfg.OpenRouter.Model, defaultModel)
	}
	if cfg.OpenRouter.Temperature != defaultTemperature {
		t.Errorf("Temperature = %v, want %v", cfg.OpenRouter.Temperature, defaultTemperature)
	}
	if cfg.OpenRouter.MaxTokens != defaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", cfg.OpenRouter.MaxTokens, defaultMaxTokens)
	}
	if cfg.OpenRouter.AppName != defaultAppName {
		t.Errorf("AppName = %q, want %q", cfg.OpenRouter.AppName, defaultAppName)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("OPENROUTER_MODEL", "google/gemini-flash-1.5")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/noorai_test")

	cfg := Load()

	if cfg.OpenRouterAPIKey != "sk-or-test" {
		t.Errorf("OpenRouterAPIKey = %q", cfg.OpenRouterAPIKey)
	}
	if cfg.OpenRouter.Model != "google/gemini-flash-1.5" {
		t.Errorf("Model = %q", cfg.OpenRouter.Model)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.DatabaseURL != "postgres://localhost/noorai_test" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestTimeoutHelpers(t *testing.T) {
	cfg := Load()

	if cfg.ShutdownTimeout().Seconds() != float64(cfg.Server.ShutdownSeconds) {
		t.Errorf("ShutdownTimeout() = %v", cfg.ShutdownTimeout())
	}
	if cfg.OpenRouterTimeout().Seconds() != float64(cfg.OpenRouter.TimeoutSeconds) {
		t.Errorf("OpenRouterTimeout() = %v", cfg.OpenRouterTimeout())
	}
}
