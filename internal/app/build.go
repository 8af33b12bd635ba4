package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sceneling/sceneling/internal/config"
	"github.com/sceneling/sceneling/internal/dialogue"
	"github.com/sceneling/sceneling/internal/httpapi"
	"github.com/sceneling/sceneling/internal/llm"
	"github.com/sceneling/sceneling/internal/logging"
	"github.com/sceneling/sceneling/internal/observability"
	"github.com/sceneling/sceneling/internal/punctuate"
	"github.com/sceneling/sceneling/internal/scene"
	"github.com/sceneling/sceneling/internal/transcript"
	"github.com/sceneling/sceneling/internal/translation"
	"github.com/sceneling/sceneling/internal/voice"
)

type Options struct {
	Logger *log.Logger
	// Offline synthesizes locally generated tones instead of calling DashScope.
	Offline bool
	// Registry isolates metrics, mainly for tests. Nil uses the default registry.
	Registry *prometheus.Registry
}

type VoiceInfo struct {
	Mode   string
	Detail string
}

type BuildResult struct {
	Config      config.Config
	API         *httpapi.Server
	Dialogue    *dialogue.Orchestrator
	Speaker     *voice.Speaker
	Translation *translation.Cache
	Transcripts transcript.Store
	Metrics     *observability.Metrics
	Voice       VoiceInfo
	LLMMode     string

	// Cleanup waits for pending transcript writes and releases the store.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, opts Options) (*BuildResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	var metrics *observability.Metrics
	if opts.Registry != nil {
		metrics = observability.NewMetricsWithRegistry(cfg.MetricsNamespace, opts.Registry, opts.Registry)
	} else {
		metrics = observability.NewMetrics(cfg.MetricsNamespace)
	}

	llmMode := cfg.LLMMode
	if opts.Offline {
		llmMode = "mock"
	}
	model, err := llm.NewChatModel(llm.Config{
		Mode:    llmMode,
		APIKey:  cfg.DashScopeAPIKey,
		BaseURL: cfg.DashScopeBaseURL,
		Timeout: 90 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("llm init failed: %w", err)
	}
	if _, ok := model.(*llm.MockModel); ok {
		llmMode = "mock"
	} else {
		llmMode = "dashscope"
	}

	transcripts, err := transcript.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("transcript store init failed: %w", err)
	}

	vs := resolveSpeaker(cfg, opts.Offline, logger, metrics)

	chat := dialogue.NewOrchestrator(model, vs.speaker, transcripts, dialogue.Config{
		Model: cfg.ChatModel,
		Voice: cfg.TTSDefaultVoice,
	}, logger, metrics)

	cache := translation.NewCache(
		translation.NewModelTranslator(model, cfg.TranslationModel),
		translation.Options{
			MaxSessions:        cfg.TranslationCacheMaxSessions,
			MaxItemsPerSession: cfg.TranslationCacheMaxItems,
			TTL:                cfg.TranslationCacheTTL,
		},
		logger,
		metrics,
	)

	api := httpapi.New(cfg, httpapi.Deps{
		Chat:       chat,
		Translator: cache,
		Speaker:    vs.speaker,
		Scenes: scene.NewAnalyzer(model, scene.Config{
			VisionModel: cfg.VisionModel,
			TextModel:   cfg.ChatModel,
		}, logger, metrics),
		Punctuator:  punctuate.New(model, cfg.PunctuationModel, logger, metrics),
		Transcripts: transcripts,
	}, metrics, logger)

	cleanup := func() error {
		chat.Wait()
		var errs []error
		if err := transcripts.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close transcripts: %w", err))
		}
		return errors.Join(errs...)
	}

	return &BuildResult{
		Config:      cfg,
		API:         api,
		Dialogue:    chat,
		Speaker:     vs.speaker,
		Translation: cache,
		Transcripts: transcripts,
		Metrics:     metrics,
		Voice:       VoiceInfo{Mode: vs.mode, Detail: vs.detail},
		LLMMode:     llmMode,
		Cleanup:     cleanup,
	}, nil
}
