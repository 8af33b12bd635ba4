package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType identifies server-sent event payload variants.
type EventType string

const (
	TypeTextFull    EventType = "text_full"
	TypeAudio       EventType = "audio"
	TypeDone        EventType = "done"
	TypeError       EventType = "error"
	TypeBasic       EventType = "basic"
	TypeExpressions EventType = "expressions"
)

var ErrUnsupportedType = errors.New("unsupported event type")

type Envelope struct {
	Type EventType `json:"type"`
}

// TextFull carries the complete assistant reply of a chat turn.
type TextFull struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

// Audio carries the synthesized speech for the speakable part of a reply.
type Audio struct {
	Type EventType `json:"type"`
	URL  string    `json:"url"`
	Text string    `json:"text"`
}

type Done struct {
	Type EventType `json:"type"`
}

// ChatError ends a chat turn. Content is the failure detail.
type ChatError struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

// Basic carries phase one of a streamed scene analysis.
type Basic struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Expressions carries phase two of a streamed scene analysis.
type Expressions struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// SceneError ends a scene analysis stream.
type SceneError struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

func NewTextFull(content string) TextFull { return TextFull{Type: TypeTextFull, Content: content} }
func NewAudio(url, text string) Audio     { return Audio{Type: TypeAudio, URL: url, Text: text} }
func NewDone() Done                       { return Done{Type: TypeDone} }
func NewChatError(detail string) ChatError {
	return ChatError{Type: TypeError, Content: detail}
}
func NewBasic(data any) Basic             { return Basic{Type: TypeBasic, Data: data} }
func NewExpressions(data any) Expressions { return Expressions{Type: TypeExpressions, Data: data} }
func NewSceneError(message string) SceneError {
	return SceneError{Type: TypeError, Message: message}
}

// TypeOf returns the event type of a known payload.
func TypeOf(v any) (EventType, bool) {
	switch m := v.(type) {
	case TextFull:
		return m.Type, true
	case Audio:
		return m.Type, true
	case Done:
		return m.Type, true
	case ChatError:
		return m.Type, true
	case Basic:
		return m.Type, true
	case Expressions:
		return m.Type, true
	case SceneError:
		return m.Type, true
	default:
		return "", false
	}
}

// ParseEvent decodes one SSE data payload. Error events decode as ChatError
// when they carry content and as SceneError when they carry message.
func ParseEvent(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case TypeTextFull:
		var m TextFull
		return decodeInto(raw, &m)
	case TypeAudio:
		var m Audio
		return decodeInto(raw, &m)
	case TypeDone:
		return Done{Type: TypeDone}, nil
	case TypeBasic:
		var m Basic
		return decodeInto(raw, &m)
	case TypeExpressions:
		var m Expressions
		return decodeInto(raw, &m)
	case TypeError:
		var probe struct {
			Content *string `json:"content"`
			Message *string `json:"message"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("decode error event: %w", err)
		}
		if probe.Message != nil && probe.Content == nil {
			return SceneError{Type: TypeError, Message: *probe.Message}, nil
		}
		var m ChatError
		return decodeInto(raw, &m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}
}

func decodeInto[T any](raw []byte, out *T) (any, error) {
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return *out, nil
}
