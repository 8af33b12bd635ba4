package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8000")
	}
	if cfg.LLMMode != "auto" {
		t.Fatalf("LLMMode = %q, want %q", cfg.LLMMode, "auto")
	}
	if cfg.TTSTimeout != 60*time.Second {
		t.Fatalf("TTSTimeout = %v, want 60s", cfg.TTSTimeout)
	}
	if cfg.TranslationCacheMaxSessions != 200 || cfg.TranslationCacheMaxItems != 200 {
		t.Fatalf("cache bounds = %d/%d, want 200/200", cfg.TranslationCacheMaxSessions, cfg.TranslationCacheMaxItems)
	}
	if cfg.TranslationCacheTTL != 2*time.Hour {
		t.Fatalf("TranslationCacheTTL = %v, want 2h", cfg.TranslationCacheTTL)
	}
	if cfg.HasDashScopeKey() {
		t.Fatalf("HasDashScopeKey() = true with empty DASHSCOPE_API_KEY")
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9191")
	t.Setenv("DASHSCOPE_API_KEY", "  sk-test  ")
	t.Setenv("TTS_TIMEOUT", "5s")
	t.Setenv("TRANSLATION_CACHE_MAX_ITEMS", "3")
	t.Setenv("TRANSLATION_CACHE_TTL", "10m")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9191" {
		t.Fatalf("BindAddr = %q, want explicit value", cfg.BindAddr)
	}
	if cfg.DashScopeAPIKey != "sk-test" {
		t.Fatalf("DashScopeAPIKey = %q, want trimmed key", cfg.DashScopeAPIKey)
	}
	if cfg.TTSTimeout != 5*time.Second {
		t.Fatalf("TTSTimeout = %v, want 5s", cfg.TTSTimeout)
	}
	if cfg.TranslationCacheMaxItems != 3 {
		t.Fatalf("TranslationCacheMaxItems = %d, want 3", cfg.TranslationCacheMaxItems)
	}
	if cfg.TranslationCacheTTL != 10*time.Minute {
		t.Fatalf("TranslationCacheTTL = %v, want 10m", cfg.TranslationCacheTTL)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("LogFormat = %q, want %q", cfg.LogFormat, "json")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad duration", key: "TTS_TIMEOUT", val: "soon"},
		{name: "timeout too short", key: "TTS_TIMEOUT", val: "10ms"},
		{name: "bad int", key: "TRANSLATION_CACHE_MAX_SESSIONS", val: "many"},
		{name: "zero items", key: "TRANSLATION_CACHE_MAX_ITEMS", val: "0"},
		{name: "bad bool", key: "APP_ALLOW_ANY_ORIGIN", val: "maybe"},
		{name: "unknown llm mode", key: "LLM_MODE", val: "openai"},
		{name: "dashscope mode without key", key: "LLM_MODE", val: "dashscope"},
		{name: "unknown log format", key: "LOG_FORMAT", val: "xml"},
		{name: "otlp without endpoint", key: "TRACING_EXPORTER", val: "otlp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%q expected error", tc.key, tc.val)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_NAME",
		"APP_VERSION",
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"DASHSCOPE_API_KEY",
		"DASHSCOPE_BASE_URL",
		"DASHSCOPE_WS_URL",
		"LLM_MODE",
		"CHAT_MODEL",
		"TRANSLATION_MODEL",
		"PUNCTUATION_MODEL",
		"VISION_MODEL",
		"TTS_MODEL",
		"TTS_DEFAULT_VOICE",
		"TTS_TIMEOUT",
		"TRANSLATION_CACHE_MAX_SESSIONS",
		"TRANSLATION_CACHE_MAX_ITEMS",
		"TRANSLATION_CACHE_TTL",
		"DATABASE_URL",
		"TRACING_EXPORTER",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_INSECURE",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
