package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sceneling/sceneling/internal/reliability"
)

// DashScopeClient calls the OpenAI-compatible chat completions endpoint.
type DashScopeClient struct {
	url    string
	apiKey string
	client *http.Client
}

func NewDashScopeClient(baseURL, apiKey string, timeout time.Duration) *DashScopeClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &DashScopeClient{
		url:    strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/chat/completions",
		apiKey: strings.TrimSpace(apiKey),
		client: &http.Client{Timeout: timeout},
	}
}

type wireContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func toWire(msgs []Message) []wireMessage {
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		if len(m.Images) == 0 {
			out = append(out, wireMessage{Role: m.Role, Content: m.Content})
			continue
		}
		parts := make([]wireContentPart, 0, len(m.Images)+1)
		for _, img := range m.Images {
			parts = append(parts, wireContentPart{Type: "image_url", ImageURL: &wireImageURL{URL: img}})
		}
		if m.Content != "" {
			parts = append(parts, wireContentPart{Type: "text", Text: m.Content})
		}
		out = append(out, wireMessage{Role: m.Role, Content: parts})
	}
	return out
}

func (c *DashScopeClient) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(wireRequest{
		Model:       req.Model,
		Messages:    toWire(req.Messages),
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed wireResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return "", &reliability.RemoteError{Service: "dashscope", Code: res.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w: %v", reliability.ErrMalformedResponse, decodeErr)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices: %w", reliability.ErrMalformedResponse)
	}
	return contentText(parsed.Choices[0].Message.Content), nil
}

// contentText accepts both plain string content and the array-of-parts form
// returned by vision models.
func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
