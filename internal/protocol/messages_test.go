package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEventAudio(t *testing.T) {
	msg, err := ParseEvent([]byte(`{"type":"audio","url":"data:audio/wav;base64,AA==","text":"Hello!"}`))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	a, ok := msg.(Audio)
	if !ok {
		t.Fatalf("event type = %T, want Audio", msg)
	}
	if a.Text != "Hello!" || a.URL == "" {
		t.Fatalf("unexpected audio event: %+v", a)
	}
}

func TestParseEventDistinguishesErrorShapes(t *testing.T) {
	msg, err := ParseEvent([]byte(`{"type":"error","content":"API error: quota"}`))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if ce, ok := msg.(ChatError); !ok || ce.Content != "API error: quota" {
		t.Fatalf("chat error = %#v", msg)
	}

	msg, err = ParseEvent([]byte(`{"type":"error","message":"图片分析失败，请重试"}`))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if se, ok := msg.(SceneError); !ok || se.Message != "图片分析失败，请重试" {
		t.Fatalf("scene error = %#v", msg)
	}
}

func TestParseEventRejectsUnknownType(t *testing.T) {
	_, err := ParseEvent([]byte(`{"type":"text_delta"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestDoneEncodesTypeOnly(t *testing.T) {
	b, err := json.Marshal(NewDone())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"type":"done"}` {
		t.Fatalf("done = %s", b)
	}
}

func TestTypeOf(t *testing.T) {
	if got, ok := TypeOf(NewSceneError("x")); !ok || got != TypeError {
		t.Fatalf("TypeOf(SceneError) = %q, %v", got, ok)
	}
	if _, ok := TypeOf("nope"); ok {
		t.Fatalf("TypeOf(string) ok = true")
	}
}
