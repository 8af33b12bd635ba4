package voice

import (
	"context"
	"time"
)

// SessionHandler receives server events of one realtime synthesis session.
// Calls come from the connection's read goroutine in arrival order: zero or
// more OnAudioDelta followed by one terminal OnFinished or OnClosed.
type SessionHandler interface {
	OnAudioDelta(pcmBase64 string)
	OnFinished()
	OnClosed(code int, reason string)
}

// SessionConfig is sent once per session before any text.
type SessionConfig struct {
	Voice          string
	ResponseFormat string
	SampleRate     int
	Mode           string
}

// RealtimeSession is the client half of a duplex synthesis connection.
type RealtimeSession interface {
	Configure(cfg SessionConfig) error
	AppendText(text string) error
	Commit() error
	Finish() error
	Close() error
}

// RealtimeChannel opens synthesis sessions.
type RealtimeChannel interface {
	Connect(ctx context.Context, handler SessionHandler) (RealtimeSession, error)
}

// Synthesizer turns text into raw PCM in one blocking call.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, timeout time.Duration) ([]byte, error)
}
