package voice

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sceneling/sceneling/internal/reliability"
)

type stubSynthesizer struct {
	calls     int
	seenVoice string
	pcm       []byte
	err       error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string, voice string, _ time.Duration) ([]byte, error) {
	s.calls++
	s.seenVoice = voice
	return s.pcm, s.err
}

func TestSpeakerPlaceholderMode(t *testing.T) {
	synth := &stubSynthesizer{}
	sp := NewSpeaker(synth, SpeakerConfig{Placeholder: true}, nil, nil)
	sp.now = func() time.Time { return time.Unix(1700000000, 0) }

	url, ok := sp.Speak(context.Background(), "Hello", "en-US-female")
	if !ok {
		t.Fatalf("Speak() ok = false in placeholder mode")
	}
	if !regexp.MustCompile(`^https://tts\.placeholder\.com/audio/[0-9a-f]{8}_1700000000\.mp3$`).MatchString(url) {
		t.Fatalf("placeholder url = %q", url)
	}
	if !strings.Contains(url, "8b1a9953") { // md5("Hello")[:8]
		t.Fatalf("placeholder url = %q, want md5 prefix of text", url)
	}
	if synth.calls != 0 {
		t.Fatalf("synth calls = %d, want 0", synth.calls)
	}
	if _, ok := sp.SpeakWAV(context.Background(), "Hello", ""); ok {
		t.Fatalf("SpeakWAV() ok = true in placeholder mode")
	}
}

func TestSpeakerReturnsWAVDataURLAndMapsVoice(t *testing.T) {
	synth := &stubSynthesizer{pcm: make([]byte, 4800)}
	sp := NewSpeaker(synth, SpeakerConfig{}, nil, nil)

	url, ok := sp.Speak(context.Background(), "Nice to meet you", "en-US-male")
	if !ok {
		t.Fatalf("Speak() ok = false")
	}
	if !strings.HasPrefix(url, "data:audio/wav;base64,UklGR") { // "RIFF"
		t.Fatalf("url = %.40q, want WAV data URL", url)
	}
	if synth.seenVoice != "Ethan" {
		t.Fatalf("provider voice = %q, want Ethan", synth.seenVoice)
	}

	if _, ok := sp.Speak(context.Background(), "x", "custom-voice"); !ok {
		t.Fatalf("Speak() with custom voice failed")
	}
	if synth.seenVoice != "custom-voice" {
		t.Fatalf("unknown voice should pass through, got %q", synth.seenVoice)
	}

	wav, ok := sp.SpeakWAV(context.Background(), "again", "")
	if !ok || string(wav[:4]) != "RIFF" {
		t.Fatalf("SpeakWAV() = %d bytes, ok=%v", len(wav), ok)
	}
	if synth.seenVoice != "Cherry" {
		t.Fatalf("default voice = %q, want Cherry", synth.seenVoice)
	}
}

func TestSpeakerSwallowsFailures(t *testing.T) {
	for _, err := range []error{
		reliability.ErrTimeout,
		reliability.ErrEmptyResult,
		&reliability.RemoteError{Service: "tts", Code: 1011, Message: "boom"},
		errors.New("dial refused"),
	} {
		sp := NewSpeaker(&stubSynthesizer{err: err}, SpeakerConfig{}, nil, nil)
		if url, ok := sp.Speak(context.Background(), "hello", "en-US-female"); ok || url != "" {
			t.Fatalf("Speak() with %v = %q, %v; want empty, false", err, url, ok)
		}
	}
}

func TestProviderVoiceTable(t *testing.T) {
	cases := map[string]string{
		"en-US-female": "Cherry",
		"en-US-male":   "Ethan",
		"zh-CN-female": "Serena",
		"Chelsie":      "Chelsie",
	}
	for in, want := range cases {
		if got := ProviderVoice(in); got != want {
			t.Fatalf("ProviderVoice(%q) = %q, want %q", in, got, want)
		}
	}
	if len(Voices()) != len(voiceTable) {
		t.Fatalf("Voices() length mismatch")
	}
}
