// Package punctuate restores punctuation in raw speech recognition output.
package punctuate

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sceneling/sceneling/internal/llm"
	"github.com/sceneling/sceneling/internal/logging"
	"github.com/sceneling/sceneling/internal/observability"
	"github.com/sceneling/sceneling/internal/reliability"
)

const chinesePrompt = "你是一个文本格式化助手。请给用户的文本添加正确的标点符号（句号、问号、逗号等）。只输出格式化后的文本，不要添加任何解释。"

const englishPrompt = `You are a text punctuation assistant. Your task is to add proper punctuation marks to the user's text.

Rules:
1. Add periods (.) at the end of statements
2. Add question marks (?) at the end of questions
3. Add commas (,) where appropriate for natural pauses
4. Capitalize the first letter of each sentence
5. Capitalize proper nouns (names, places)
6. Fix contractions (dont -> don't, Im -> I'm, etc.)

IMPORTANT: Only output the punctuated text, nothing else. Do not add quotation marks around the result.`

// Service punctuates text through a text model. It never fails: any error
// returns the input unchanged.
type Service struct {
	model   llm.ChatModel
	name    string
	logger  *log.Logger
	metrics *observability.Metrics
}

// New returns a Service. A nil model disables punctuation.
func New(model llm.ChatModel, modelName string, logger *log.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{model: model, name: modelName, logger: logger.With("component", "punctuate"), metrics: metrics}
}

// Punctuate adds punctuation to text. language "zh" selects Chinese rules;
// anything else is treated as English.
func (s *Service) Punctuate(ctx context.Context, text, language string) string {
	if strings.TrimSpace(text) == "" || s.model == nil {
		return text
	}

	prompt := englishPrompt
	if strings.EqualFold(strings.TrimSpace(language), "zh") {
		prompt = chinesePrompt
	}

	start := time.Now()
	out, err := s.model.Complete(ctx, llm.Request{
		Purpose: llm.PurposePunctuate,
		Model:   s.name,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompt},
			{Role: llm.RoleUser, Content: text},
		},
	})
	s.metrics.ObserveStage("punctuation", time.Since(start))
	if err != nil {
		s.metrics.ObserveProviderError("punctuate", reliability.Code(err))
		s.logger.Warn("punctuation failed", "code", reliability.Code(err), "err", err)
		return text
	}

	out = strings.Trim(out, `"'`)
	if strings.TrimSpace(out) == "" {
		return text
	}
	s.logger.Debug("punctuation added", "in", len(text), "out", len(out))
	return out
}
