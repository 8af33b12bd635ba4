package punctuate

import (
	"context"
	"errors"
	"testing"

	"github.com/sceneling/sceneling/internal/llm"
)

type stubModel struct {
	reply string
	err   error
	last  llm.Request
	calls int
}

func (m *stubModel) Complete(_ context.Context, req llm.Request) (string, error) {
	m.calls++
	m.last = req
	return m.reply, m.err
}

func TestPunctuateStripsQuotesAndPicksPrompt(t *testing.T) {
	model := &stubModel{reply: `"Hi, how are you? I'm fine."`}
	s := New(model, "qwen-plus", nil, nil)

	if got := s.Punctuate(context.Background(), "hi how are you im fine", "en"); got != "Hi, how are you? I'm fine." {
		t.Fatalf("Punctuate() = %q", got)
	}
	if model.last.Model != "qwen-plus" || model.last.Messages[0].Content != englishPrompt {
		t.Fatalf("request = %+v", model.last)
	}
	if model.last.Messages[1].Content != "hi how are you im fine" {
		t.Fatalf("user message = %q", model.last.Messages[1].Content)
	}

	model.reply = "'你好，今天天气很好。'"
	if got := s.Punctuate(context.Background(), "你好今天天气很好", "zh"); got != "你好，今天天气很好。" {
		t.Fatalf("Punctuate(zh) = %q", got)
	}
	if model.last.Messages[0].Content != chinesePrompt {
		t.Fatalf("zh prompt not selected")
	}
}

func TestPunctuateReturnsInputOnFailure(t *testing.T) {
	model := &stubModel{err: errors.New("quota exceeded")}
	s := New(model, "qwen-plus", nil, nil)
	if got := s.Punctuate(context.Background(), "where is the station", "en"); got != "where is the station" {
		t.Fatalf("Punctuate() = %q", got)
	}

	model.err, model.reply = nil, `""`
	if got := s.Punctuate(context.Background(), "thanks", "en"); got != "thanks" {
		t.Fatalf("Punctuate(empty reply) = %q", got)
	}
}

func TestPunctuateSkipsBlankInputAndMissingModel(t *testing.T) {
	model := &stubModel{reply: "x"}
	s := New(model, "", nil, nil)
	if got := s.Punctuate(context.Background(), "   ", "en"); got != "   " || model.calls != 0 {
		t.Fatalf("Punctuate(blank) = %q, calls = %d", got, model.calls)
	}
	if got := New(nil, "", nil, nil).Punctuate(context.Background(), "hello", "en"); got != "hello" {
		t.Fatalf("Punctuate(no model) = %q", got)
	}
}
