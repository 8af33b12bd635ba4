package translation

import (
	"context"

	"github.com/sceneling/sceneling/internal/llm"
)

const translationPrompt = `You are a professional translator.
Translate the user's text into Simplified Chinese.
Return only the Chinese translation, no extra punctuation, no quotes, no explanations.`

// ModelTranslator translates with a deterministic (temperature 0) chat completion.
type ModelTranslator struct {
	model llm.ChatModel
	name  string
}

func NewModelTranslator(model llm.ChatModel, modelName string) *ModelTranslator {
	return &ModelTranslator{model: model, name: modelName}
}

func (t *ModelTranslator) Translate(ctx context.Context, text string) (string, error) {
	return t.model.Complete(ctx, llm.Request{
		Purpose: llm.PurposeTranslate,
		Model:   t.name,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: translationPrompt},
			{Role: llm.RoleUser, Content: text},
		},
		Temperature: llm.Float(0),
	})
}
