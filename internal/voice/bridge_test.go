package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sceneling/sceneling/internal/reliability"
)

// scriptedChannel runs onFinish on its own goroutine when the bridge sends
// session.finish, standing in for the server's event stream.
type scriptedChannel struct {
	connectErr error
	onFinish   func(h SessionHandler)

	mu      sync.Mutex
	calls   []string
	cfg     SessionConfig
	text    string
	closed  chan struct{}
	closeMu sync.Once
}

func newScriptedChannel(onFinish func(h SessionHandler)) *scriptedChannel {
	return &scriptedChannel{onFinish: onFinish, closed: make(chan struct{})}
}

func (c *scriptedChannel) Connect(ctx context.Context, h SessionHandler) (RealtimeSession, error) {
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return &scriptedSession{ch: c, handler: h}, nil
}

func (c *scriptedChannel) record(call string) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

func (c *scriptedChannel) recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type scriptedSession struct {
	ch      *scriptedChannel
	handler SessionHandler
}

func (s *scriptedSession) Configure(cfg SessionConfig) error {
	s.ch.record("configure")
	s.ch.mu.Lock()
	s.ch.cfg = cfg
	s.ch.mu.Unlock()
	return nil
}

func (s *scriptedSession) AppendText(text string) error {
	s.ch.record("append")
	s.ch.mu.Lock()
	s.ch.text = text
	s.ch.mu.Unlock()
	return nil
}

func (s *scriptedSession) Commit() error {
	s.ch.record("commit")
	return nil
}

func (s *scriptedSession) Finish() error {
	s.ch.record("finish")
	if s.ch.onFinish != nil {
		go s.ch.onFinish(s.handler)
	}
	return nil
}

func (s *scriptedSession) Close() error {
	s.ch.record("close")
	s.ch.closeMu.Do(func() { close(s.ch.closed) })
	return nil
}

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func waitClosed(t *testing.T, ch *scriptedChannel) {
	t.Helper()
	select {
	case <-ch.closed:
	case <-time.After(time.Second):
		t.Fatalf("session was not closed")
	}
}

func TestBridgeConcatenatesChunksInOrder(t *testing.T) {
	ch := newScriptedChannel(func(h SessionHandler) {
		h.OnAudioDelta(b64([]byte{1, 2}))
		h.OnAudioDelta(b64([]byte{3, 4}))
		h.OnAudioDelta(b64([]byte{5, 6}))
		h.OnFinished()
	})
	b := NewBridge(ch, time.Second, nil)

	pcm, err := b.Synthesize(context.Background(), "Hello there", "Cherry", 0)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(pcm) != string([]byte{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("pcm = %v, want chunks in arrival order", pcm)
	}
	waitClosed(t, ch)

	calls := ch.recorded()
	want := []string{"configure", "append", "commit", "finish", "close"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
	if ch.cfg.Voice != "Cherry" || ch.cfg.ResponseFormat != "pcm" || ch.cfg.SampleRate != 24000 {
		t.Fatalf("session config = %+v", ch.cfg)
	}
	if ch.text != "Hello there" {
		t.Fatalf("appended text = %q", ch.text)
	}
}

func TestBridgeTimesOutAndClosesSession(t *testing.T) {
	ch := newScriptedChannel(func(h SessionHandler) {
		h.OnAudioDelta(b64([]byte{1, 2}))
		// never terminates
	})
	b := NewBridge(ch, time.Minute, nil)

	timeout := 80 * time.Millisecond
	start := time.Now()
	_, err := b.Synthesize(context.Background(), "slow", "Cherry", timeout)
	elapsed := time.Since(start)

	if !errors.Is(err, reliability.ErrTimeout) {
		t.Fatalf("Synthesize() error = %v, want ErrTimeout", err)
	}
	if elapsed > timeout+500*time.Millisecond {
		t.Fatalf("Synthesize() returned after %v, want about %v", elapsed, timeout)
	}
	waitClosed(t, ch)
}

func TestBridgeAbnormalCloseIsRemoteError(t *testing.T) {
	ch := newScriptedChannel(func(h SessionHandler) {
		h.OnAudioDelta(b64([]byte{1, 2}))
		h.OnClosed(1011, "internal error")
	})
	b := NewBridge(ch, time.Second, nil)

	_, err := b.Synthesize(context.Background(), "text", "Cherry", 0)
	var remote *reliability.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Synthesize() error = %v, want RemoteError", err)
	}
	if remote.Code != 1011 || remote.Message != "internal error" {
		t.Fatalf("remote = %+v", remote)
	}
	waitClosed(t, ch)
}

func TestBridgeNormalCloseWithoutAudioIsEmptyResult(t *testing.T) {
	ch := newScriptedChannel(func(h SessionHandler) {
		h.OnClosed(1000, "")
	})
	b := NewBridge(ch, time.Second, nil)

	_, err := b.Synthesize(context.Background(), "text", "Cherry", 0)
	if !errors.Is(err, reliability.ErrEmptyResult) {
		t.Fatalf("Synthesize() error = %v, want ErrEmptyResult", err)
	}
}

func TestBridgeIgnoresCallbacksAfterTerminal(t *testing.T) {
	ch := newScriptedChannel(func(h SessionHandler) {
		h.OnAudioDelta(b64([]byte{7, 8}))
		h.OnFinished()
		h.OnClosed(1006, "late")
		h.OnFinished()
	})
	b := NewBridge(ch, time.Second, nil)

	pcm, err := b.Synthesize(context.Background(), "text", "Cherry", 0)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(pcm) != 2 {
		t.Fatalf("len(pcm) = %d, want 2", len(pcm))
	}
}

func TestBridgeConnectFailure(t *testing.T) {
	ch := newScriptedChannel(nil)
	ch.connectErr = errors.New("dial refused")
	b := NewBridge(ch, time.Second, nil)

	if _, err := b.Synthesize(context.Background(), "text", "Cherry", 0); err == nil {
		t.Fatalf("Synthesize() expected connect error")
	}
}

func TestBridgeCallerCancelClosesSession(t *testing.T) {
	ch := newScriptedChannel(func(SessionHandler) {})
	b := NewBridge(ch, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	_, err := b.Synthesize(ctx, "text", "Cherry", 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Synthesize() error = %v, want context.Canceled", err)
	}
	waitClosed(t, ch)
}

func TestBridgeWithMockChannel(t *testing.T) {
	b := NewBridge(NewMockChannel(), time.Second, nil)
	pcm, err := b.Synthesize(context.Background(), "forty bytes of english text for a tone", "Cherry", 0)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if want := 2 * 4800; len(pcm) != want {
		t.Fatalf("len(pcm) = %d, want %d (two 100ms chunks)", len(pcm), want)
	}
}
