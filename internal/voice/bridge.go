package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sceneling/sceneling/internal/audio"
	"github.com/sceneling/sceneling/internal/logging"
	"github.com/sceneling/sceneling/internal/observability"
	"github.com/sceneling/sceneling/internal/reliability"
)

// DefaultSynthesisTimeout bounds one realtime synthesis call.
const DefaultSynthesisTimeout = 60 * time.Second

// Bridge turns a callback-driven realtime session into one blocking call.
// Each call runs its session on a dedicated goroutine that owns the
// connection; the caller only waits for the single result.
type Bridge struct {
	channel RealtimeChannel
	timeout time.Duration
	logger  *log.Logger
}

func NewBridge(channel RealtimeChannel, timeout time.Duration, logger *log.Logger) *Bridge {
	if timeout <= 0 {
		timeout = DefaultSynthesisTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bridge{channel: channel, timeout: timeout, logger: logger.With("component", "tts_bridge")}
}

type synthesisResult struct {
	pcm []byte
	err error
}

// Synthesize returns raw 24 kHz mono PCM16 for text. Errors wrap
// reliability.ErrTimeout, reliability.ErrEmptyResult or a *reliability.RemoteError.
// A non-positive timeout uses the bridge default.
func (b *Bridge) Synthesize(ctx context.Context, text, voice string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = b.timeout
	}
	ctx, span := observability.Tracer().Start(ctx, "tts.synthesize")
	defer span.End()
	span.SetAttributes(attribute.String("tts.voice", voice), attribute.Int("tts.text_length", len(text)))

	runCtx, cancel := context.WithCancel(ctx)
	// Cancelling on return makes the session goroutine close the connection
	// on the timeout and caller-cancel paths too.
	defer cancel()

	result := make(chan synthesisResult, 1)
	go b.run(runCtx, text, voice, result)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var res synthesisResult
	select {
	case res = <-result:
	case <-timer.C:
		res.err = fmt.Errorf("synthesis after %s: %w", timeout, reliability.ErrTimeout)
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		span.RecordError(res.err)
		span.SetStatus(codes.Error, reliability.Code(res.err))
		return nil, res.err
	}
	span.SetAttributes(attribute.Int("tts.pcm_bytes", len(res.pcm)))
	return res.pcm, nil
}

func (b *Bridge) run(ctx context.Context, text, voice string, out chan<- synthesisResult) {
	s := newSynthesisSession()
	conn, err := b.channel.Connect(ctx, s)
	if err != nil {
		out <- synthesisResult{err: fmt.Errorf("connect: %w", err)}
		return
	}
	defer conn.Close()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"configure", func() error {
			return conn.Configure(SessionConfig{
				Voice:          voice,
				ResponseFormat: "pcm",
				SampleRate:     audio.RealtimeSpeech.SampleRate,
				Mode:           "commit",
			})
		}},
		{"append", func() error { return conn.AppendText(text) }},
		{"commit", conn.Commit},
		{"finish", conn.Finish},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			out <- synthesisResult{err: fmt.Errorf("%s: %w", step.name, err)}
			return
		}
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		b.logger.Debug("synthesis abandoned by caller", "voice", voice)
		return
	}
	pcm, err := s.result()
	if n := s.invalidChunks(); n > 0 {
		b.logger.Warn("dropped undecodable audio deltas", "voice", voice, "count", n)
	}
	out <- synthesisResult{pcm: pcm, err: err}
}

// synthesisSession accumulates one call's audio. It is written only by the
// channel's callbacks and read once after done is closed.
type synthesisSession struct {
	mu      sync.Mutex
	pcm     bytes.Buffer
	failure error
	badData int

	done     chan struct{}
	doneOnce sync.Once
}

func newSynthesisSession() *synthesisSession {
	return &synthesisSession{done: make(chan struct{})}
}

func (s *synthesisSession) OnAudioDelta(pcmBase64 string) {
	chunk, err := base64.StdEncoding.DecodeString(pcmBase64)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.badData++
		return
	}
	s.pcm.Write(chunk)
}

func (s *synthesisSession) OnFinished() {
	s.finish(nil)
}

func (s *synthesisSession) OnClosed(code int, reason string) {
	if code == websocket.CloseNormalClosure {
		s.finish(nil)
		return
	}
	s.finish(&reliability.RemoteError{Service: "tts", Code: code, Message: reason})
}

func (s *synthesisSession) finish(err error) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.failure = err
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *synthesisSession) invalidChunks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.badData
}

func (s *synthesisSession) result() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}
	if s.pcm.Len() == 0 {
		return nil, reliability.ErrEmptyResult
	}
	return bytes.Clone(s.pcm.Bytes()), nil
}
