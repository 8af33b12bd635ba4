package dialogue

import (
	"fmt"
	"strings"

	"github.com/sceneling/sceneling/internal/llm"
)

// HistoryMessage is one prior message as clients send it.
type HistoryMessage struct {
	Content string `json:"content"`
	IsUser  bool   `json:"is_user"`
}

// Scene describes the role-play setting of a scene chat.
type Scene struct {
	Tag      string   `json:"scene_tag"`
	TagCN    string   `json:"scene_tag_cn"`
	Category string   `json:"category"`
	Roles    []string `json:"roles"`
	UserRole string   `json:"user_role"`
	AIRole   string   `json:"ai_role"`
}

const sceneSystemPrompt = `You are a friendly English learning assistant helping the user practice spoken English.

## Scene Context
- Scene: %s (%s)
- Category: %s
- Possible roles: %s
- User role: %s
- Your role (AI): %s

## Your Tasks
1. Role-play as one character in the scene and chat with the user
2. Respond only in English; do not include any Chinese translation
3. Adjust difficulty to the user's English level
4. Encourage the user to express more in English
5. Gently correct grammar mistakes when appropriate
6. Keep each reply under 100 words

## Response Format
- English only
- No translation or explanations in Chinese
- If the user makes grammar mistakes, gently correct them with a better phrasing`

const freeChatSystemPrompt = `You are a friendly English conversation partner helping the user practice spoken English.

## Your Tasks
1. Chat naturally about whatever topic the user brings up
2. Respond in English; if the user seems stuck, you may add a short Chinese hint in parentheses
3. Adjust difficulty to the user's English level
4. Ask a follow-up question to keep the conversation going
5. Gently correct grammar mistakes with a better phrasing
6. Keep each reply under 80 words`

// SystemPrompt returns the scene role-play prompt, or the free chat prompt
// when scene is nil.
func SystemPrompt(scene *Scene) string {
	if scene == nil {
		return freeChatSystemPrompt
	}
	return fmt.Sprintf(sceneSystemPrompt,
		scene.Tag,
		scene.TagCN,
		scene.Category,
		strings.Join(scene.Roles, ", "),
		scene.UserRole,
		scene.AIRole,
	)
}

// BuildMessages lays out system prompt, history and the new user message.
func BuildMessages(scene *Scene, history []HistoryMessage, message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt(scene)})
	for _, h := range history {
		role := llm.RoleAssistant
		if h.IsUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: h.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
	return msgs
}
