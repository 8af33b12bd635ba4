package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONFormatWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "json")
	logger.Info("cache miss", "session", "s-1")

	line := strings.TrimSpace(buf.String())
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		t.Fatalf("log line is not JSON: %q (%v)", line, err)
	}
	if obj["msg"] != "cache miss" {
		t.Fatalf("msg = %v, want %q", obj["msg"], "cache miss")
	}
	if obj["session"] != "s-1" {
		t.Fatalf("session = %v, want %q", obj["session"], "s-1")
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "chatty", "text")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}
	logger.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("info output missing: %q", buf.String())
	}
}
