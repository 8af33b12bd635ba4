package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the SceneLing API.
type Config struct {
	AppName          string
	AppVersion       string
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	LogLevel  string
	LogFormat string

	DashScopeAPIKey  string
	DashScopeBaseURL string
	DashScopeWSURL   string

	// LLMMode selects the model backend: auto, dashscope or mock.
	LLMMode          string
	ChatModel        string
	TranslationModel string
	PunctuationModel string
	VisionModel      string

	TTSModel        string
	TTSDefaultVoice string
	TTSTimeout      time.Duration

	TranslationCacheMaxSessions int
	TranslationCacheMaxItems    int
	TranslationCacheTTL         time.Duration

	DatabaseURL string

	TracingExporter string
	OTLPEndpoint    string
	OTLPInsecure    bool
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		AppName:          envOrDefault("APP_NAME", "SceneLing API"),
		AppVersion:       envOrDefault("APP_VERSION", "1.0.0"),
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8000"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "sceneling"),
		// The mobile client talks to the API directly, so any origin is accepted by default.
		AllowAnyOrigin:   true,
		LogLevel:         strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(envOrDefault("LOG_FORMAT", "text")),
		DashScopeAPIKey:  stringsTrimSpace("DASHSCOPE_API_KEY"),
		DashScopeBaseURL: envOrDefault("DASHSCOPE_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
		DashScopeWSURL:   envOrDefault("DASHSCOPE_WS_URL", "wss://dashscope.aliyuncs.com/api-ws/v1/realtime"),
		LLMMode:          strings.ToLower(envOrDefault("LLM_MODE", "auto")),
		ChatModel:        envOrDefault("CHAT_MODEL", "qwen-turbo"),
		TranslationModel: envOrDefault("TRANSLATION_MODEL", "qwen-turbo"),
		PunctuationModel: envOrDefault("PUNCTUATION_MODEL", "qwen-plus"),
		VisionModel:      envOrDefault("VISION_MODEL", "qwen-vl-max"),
		TTSModel:         envOrDefault("TTS_MODEL", "qwen-tts-realtime"),
		TTSDefaultVoice:  envOrDefault("TTS_DEFAULT_VOICE", "en-US-female"),
		TTSTimeout:       60 * time.Second,

		TranslationCacheMaxSessions: 200,
		TranslationCacheMaxItems:    200,
		TranslationCacheTTL:         2 * time.Hour,

		DatabaseURL:     stringsTrimSpace("DATABASE_URL"),
		TracingExporter: strings.ToLower(envOrDefault("TRACING_EXPORTER", "none")),
		OTLPEndpoint:    stringsTrimSpace("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ShutdownTimeout: 15 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.TTSTimeout, err = durationFromEnv("TTS_TIMEOUT", cfg.TTSTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TranslationCacheMaxSessions, err = intFromEnv("TRANSLATION_CACHE_MAX_SESSIONS", cfg.TranslationCacheMaxSessions)
	if err != nil {
		return Config{}, err
	}
	cfg.TranslationCacheMaxItems, err = intFromEnv("TRANSLATION_CACHE_MAX_ITEMS", cfg.TranslationCacheMaxItems)
	if err != nil {
		return Config{}, err
	}
	cfg.TranslationCacheTTL, err = durationFromEnv("TRANSLATION_CACHE_TTL", cfg.TranslationCacheTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.OTLPInsecure, err = boolFromEnv("OTEL_EXPORTER_OTLP_INSECURE", cfg.OTLPInsecure)
	if err != nil {
		return Config{}, err
	}

	switch cfg.LLMMode {
	case "auto", "dashscope", "mock":
	default:
		return Config{}, fmt.Errorf("LLM_MODE must be one of auto, dashscope, mock (got %q)", cfg.LLMMode)
	}
	if cfg.LLMMode == "dashscope" && cfg.DashScopeAPIKey == "" {
		return Config{}, fmt.Errorf("DASHSCOPE_API_KEY is required when LLM_MODE=dashscope")
	}
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be one of text, json, logfmt (got %q)", cfg.LogFormat)
	}
	switch cfg.TracingExporter {
	case "none", "stdout", "otlp":
	default:
		return Config{}, fmt.Errorf("TRACING_EXPORTER must be one of none, stdout, otlp (got %q)", cfg.TracingExporter)
	}
	if cfg.TracingExporter == "otlp" && cfg.OTLPEndpoint == "" {
		return Config{}, fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when TRACING_EXPORTER=otlp")
	}
	if cfg.TTSTimeout < time.Second {
		return Config{}, fmt.Errorf("TTS_TIMEOUT must be at least 1s")
	}
	if cfg.TranslationCacheMaxSessions <= 0 {
		return Config{}, fmt.Errorf("TRANSLATION_CACHE_MAX_SESSIONS must be positive")
	}
	if cfg.TranslationCacheMaxItems <= 0 {
		return Config{}, fmt.Errorf("TRANSLATION_CACHE_MAX_ITEMS must be positive")
	}
	if cfg.TranslationCacheTTL <= 0 {
		return Config{}, fmt.Errorf("TRANSLATION_CACHE_TTL must be positive")
	}

	return cfg, nil
}

// HasDashScopeKey reports whether remote AI calls can be made.
func (c Config) HasDashScopeKey() bool {
	return c.DashScopeAPIKey != ""
}

func envOrDefault(key, fallback string) string {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
