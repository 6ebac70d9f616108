package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestParseCSVEnv проверяет разбор списка origin из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("CORS_ALLOW_ORIGINS", " https://chat.example.com, ,http://localhost:4200 ")

	got := parseCSVEnv("CORS_ALLOW_ORIGINS")
	want := []string{"https://chat.example.com", "http://localhost:4200"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestLoadDefaults проверяет значения по умолчанию при минимальном окружении.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "claude-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AI.AnthropicAPIKey != "claude-key" {
		t.Fatalf("expected CLAUDE_API_KEY fallback, got %q", cfg.AI.AnthropicAPIKey)
	}
	if cfg.AI.DefaultTemperature != 0.2 || cfg.AI.DefaultMaxTokens != 2048 {
		t.Fatalf("unexpected generation defaults %+v", cfg.AI)
	}
	if cfg.AI.Timeout != 60*time.Second {
		t.Fatalf("unexpected ai timeout %s", cfg.AI.Timeout)
	}
	if cfg.AI.SystemPrompt == "" {
		t.Fatal("expected default system prompt")
	}
	if cfg.Database.Enabled() || cfg.Auth.Enabled() {
		t.Fatal("expected database and auth to be disabled")
	}
}

// TestLoadRequiresVendorKey проверяет ошибку без ключей вендоров.
func TestLoadRequiresVendorKey(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without vendor keys")
	}
}

// TestLoadRejectsShortSecret проверяет минимальную длину JWT_SECRET.
func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("OPENAI_API_KEY", "key")
	t.Setenv("JWT_SECRET", "short")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}

// TestParseFloatEnvInvalid проверяет ошибку разбора числа.
func TestParseFloatEnvInvalid(t *testing.T) {
	t.Setenv("AI_DEFAULT_TEMPERATURE", "warm")

	if _, err := parseFloatEnv("AI_DEFAULT_TEMPERATURE", 0.2); err == nil {
		t.Fatal("expected error for invalid float")
	}
}

// TestLoadRejectsEmptySystemPrompt проверяет, что преамбула не может быть пустой.
func TestLoadRejectsEmptySystemPrompt(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("OPENAI_API_KEY", "key")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AI_SYSTEM_PROMPT", "  ")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "AI_SYSTEM_PROMPT") {
		t.Fatalf("expected empty system prompt error, got %v", err)
	}
}

// TestLoadAuthWithoutVendorKeys проверяет загрузку JWT-настроек без ключей вендоров.
func TestLoadAuthWithoutVendorKeys(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("JWT_ACCESS_TTL", "2h")

	cfg, err := LoadAuth()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.Enabled() || cfg.AccessTokenTTL != 2*time.Hour || cfg.JWTIssuer != "chat-relay" {
		t.Fatalf("unexpected auth config %+v", cfg)
	}

	t.Setenv("JWT_SECRET", "short")
	if _, err := LoadAuth(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}
