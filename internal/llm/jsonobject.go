package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sceneling/sceneling/internal/reliability"
)

// ExtractJSONObject returns the span from the first '{' to the last '}' of
// model output, which often wraps JSON in prose or code fences.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end <= start {
		return "", fmt.Errorf("no json object in model output: %w", reliability.ErrMalformedResponse)
	}
	return text[start : end+1], nil
}

// DecodeJSONObject extracts and unmarshals the JSON object embedded in text.
func DecodeJSONObject(text string, out any) error {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", reliability.ErrMalformedResponse, err)
	}
	return nil
}
