// Package llm talks to the text and vision models behind chat, translation,
// punctuation and scene analysis.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sceneling/sceneling/internal/reliability"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Purpose labels a request for logging, metrics and the offline mock.
type Purpose string

const (
	PurposeChat             Purpose = "chat"
	PurposeTranslate        Purpose = "translate"
	PurposePunctuate        Purpose = "punctuate"
	PurposeSceneBasic       Purpose = "scene_basic"
	PurposeSceneExpressions Purpose = "scene_expressions"
	PurposeSceneFull        Purpose = "scene_full"
)

// Message is one entry of an ordered conversation. Images holds data or
// https URLs and is only honored by vision models.
type Message struct {
	Role    string
	Content string
	Images  []string
}

// Request is a single completion call.
type Request struct {
	Purpose     Purpose
	Model       string
	Messages    []Message
	Temperature *float64
}

// ChatModel completes a conversation in one blocking call.
type ChatModel interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config controls model client construction.
type Config struct {
	Mode    string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewChatModel picks the DashScope client when a key is configured and falls
// back to the offline mock in auto mode.
func NewChatModel(cfg Config) (ChatModel, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return NewMockModel(), nil
		}
		return NewDashScopeClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "dashscope":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("dashscope mode: %w", reliability.ErrConfigurationMissing)
		}
		return NewDashScopeClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "mock":
		return NewMockModel(), nil
	default:
		return nil, fmt.Errorf("unsupported llm mode %q", cfg.Mode)
	}
}

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 { return &v }
