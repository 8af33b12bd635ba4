package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// MockModel provides deterministic local replies when DashScope is not configured.
type MockModel struct{}

func NewMockModel() *MockModel { return &MockModel{} }

func (m *MockModel) Complete(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	input := strings.TrimSpace(lastUserContent(req.Messages))
	switch req.Purpose {
	case PurposeTranslate:
		return fmt.Sprintf("（译）%s", input), nil
	case PurposePunctuate:
		return mockPunctuate(input), nil
	case PurposeSceneBasic:
		return mockSceneBasic, nil
	case PurposeSceneExpressions:
		return mockSceneExpressions, nil
	case PurposeSceneFull:
		return mockSceneFull, nil
	default:
		if input == "" {
			input = "I am listening."
		}
		return fmt.Sprintf("I heard you: %s (我听到了)", input), nil
	}
}

func lastUserContent(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

func mockPunctuate(text string) string {
	if text == "" {
		return text
	}
	r := []rune(text)
	r[0] = unicode.ToUpper(r[0])
	out := string(r)
	if !strings.ContainsAny(out[len(out)-1:], ".?!") {
		out += "."
	}
	return out
}

const mockSceneBasic = `{
  "scene_tag": "Coffee Shop",
  "scene_tag_cn": "咖啡店",
  "object_tags": [
    {"en": "latte", "cn": "拿铁", "phonetic": "/ˈlɑːteɪ/", "pos": "n."},
    {"en": "counter", "cn": "柜台", "phonetic": "/ˈkaʊntər/", "pos": "n."}
  ],
  "description": {"en": "A barista hands a latte across the counter.", "cn": "咖啡师隔着柜台递出一杯拿铁。"},
  "category": "生活"
}`

const mockSceneExpressions = `{
  "roles": [
    {
      "role_en": "Customer",
      "role_cn": "顾客",
      "sentences": [
        {"en": "Could I get a medium latte, please?", "cn": "请给我一杯中杯拿铁好吗？"},
        {"en": "Can I pay by card?", "cn": "我可以刷卡吗？"}
      ]
    },
    {
      "role_en": "Barista",
      "role_cn": "咖啡师",
      "sentences": [
        {"en": "What name should I put on the cup?", "cn": "杯子上写什么名字？"},
        {"en": "Your latte will be ready in a minute.", "cn": "您的拿铁马上就好。"}
      ]
    }
  ]
}`

var mockSceneFull = strings.TrimSuffix(strings.TrimSpace(mockSceneBasic), "}") +
	`,  "expressions": ` + mockSceneExpressions + "\n}"
