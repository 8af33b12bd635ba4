package voice

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sceneling/sceneling/internal/audio"
)

// MockChannel is a local realtime channel that answers every session with a
// quiet tone, one 100 ms delta per 20 bytes of text. Used for offline runs.
type MockChannel struct{}

func NewMockChannel() *MockChannel { return &MockChannel{} }

func (c *MockChannel) Connect(ctx context.Context, handler SessionHandler) (RealtimeSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &mockSession{
		handler: handler,
		queue:   make(chan func(), 64),
		stop:    make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

// mockSession delivers callbacks from a single goroutine, in order, like a
// websocket read loop would.
type mockSession struct {
	handler SessionHandler

	mu         sync.Mutex
	configured bool
	pending    string

	queue     chan func()
	stop      chan struct{}
	closeOnce sync.Once
}

var errMockSessionClosed = errors.New("mock session closed")

func (s *mockSession) loop() {
	for {
		select {
		case <-s.stop:
			return
		case fn := <-s.queue:
			fn()
		}
	}
}

func (s *mockSession) enqueue(fn func()) error {
	select {
	case <-s.stop:
		return errMockSessionClosed
	case s.queue <- fn:
		return nil
	}
}

func (s *mockSession) Configure(SessionConfig) error {
	s.mu.Lock()
	s.configured = true
	s.mu.Unlock()
	return s.enqueue(func() {})
}

func (s *mockSession) AppendText(text string) error {
	s.mu.Lock()
	s.pending += text
	s.mu.Unlock()
	return s.enqueue(func() {})
}

func (s *mockSession) Commit() error {
	s.mu.Lock()
	text, configured := s.pending, s.configured
	s.pending = ""
	s.mu.Unlock()
	if !configured {
		return s.enqueue(func() { s.handler.OnClosed(websocket.ClosePolicyViolation, "session not configured") })
	}
	return s.enqueue(func() {
		for i := 0; i < (len(text)+19)/20; i++ {
			s.handler.OnAudioDelta(base64.StdEncoding.EncodeToString(toneChunk(i)))
		}
	})
}

func (s *mockSession) Finish() error {
	return s.enqueue(s.handler.OnFinished)
}

func (s *mockSession) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

// toneChunk returns 100 ms of a 440 Hz sine as PCM16LE.
func toneChunk(offset int) []byte {
	rate := audio.RealtimeSpeech.SampleRate
	n := rate / 10
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(offset*n+i) / float64(rate)
		v := int16(3000 * math.Sin(2*math.Pi*440*t))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
