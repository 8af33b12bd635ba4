package voice

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/sceneling/sceneling/internal/audio"
	"github.com/sceneling/sceneling/internal/logging"
	"github.com/sceneling/sceneling/internal/observability"
	"github.com/sceneling/sceneling/internal/reliability"
)

// Speaker is the text-to-speech facade used by request handlers. It never
// returns errors: failures are logged and reported as ok=false.
type Speaker struct {
	synth        Synthesizer
	placeholder  bool
	defaultVoice string
	timeout      time.Duration
	logger       *log.Logger
	metrics      *observability.Metrics
	now          func() time.Time
}

type SpeakerConfig struct {
	// Placeholder is set when no credentials are configured; Speak then
	// returns a placeholder URL instead of real audio.
	Placeholder  bool
	DefaultVoice string
	Timeout      time.Duration
}

func NewSpeaker(synth Synthesizer, cfg SpeakerConfig, logger *log.Logger, metrics *observability.Metrics) *Speaker {
	if strings.TrimSpace(cfg.DefaultVoice) == "" {
		cfg.DefaultVoice = "en-US-female"
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Speaker{
		synth:        synth,
		placeholder:  cfg.Placeholder || synth == nil,
		defaultVoice: cfg.DefaultVoice,
		timeout:      cfg.Timeout,
		logger:       logger.With("component", "tts"),
		metrics:      metrics,
		now:          time.Now,
	}
}

// Placeholder reports whether Speak returns placeholder URLs.
func (s *Speaker) Placeholder() bool { return s.placeholder }

// Speak synthesizes text and returns a WAV data URL. In placeholder mode it
// returns a deterministic-per-second placeholder URL that is not playable.
func (s *Speaker) Speak(ctx context.Context, text, voice string) (string, bool) {
	if s.placeholder {
		return PlaceholderURL(text, s.now()), true
	}
	wav, ok := s.SpeakWAV(ctx, text, voice)
	if !ok {
		return "", false
	}
	return audio.DataURL(wav), true
}

// SpeakWAV synthesizes text and returns a WAV file. It reports false in
// placeholder mode and on any synthesis failure.
func (s *Speaker) SpeakWAV(ctx context.Context, text, voice string) ([]byte, bool) {
	text = speechText(text)
	if text == "" || s.placeholder {
		return nil, false
	}
	if strings.TrimSpace(voice) == "" {
		voice = s.defaultVoice
	}
	providerVoice := ProviderVoice(voice)

	start := time.Now()
	pcm, err := s.synth.Synthesize(ctx, text, providerVoice, s.timeout)
	elapsed := time.Since(start)
	if err != nil {
		code := reliability.Code(err)
		if ctx.Err() != nil {
			code = "canceled"
		}
		s.metrics.ObserveTTS(code, elapsed)
		s.metrics.ObserveProviderError("tts", code)
		s.logger.Warn("speech synthesis failed", "voice", providerVoice, "code", code, "elapsed", elapsed, "err", err)
		return nil, false
	}

	wav, err := audio.EncodeWAV(pcm, audio.RealtimeSpeech)
	if err != nil {
		s.metrics.ObserveTTS("encode_error", elapsed)
		s.logger.Warn("wav encode failed", "voice", providerVoice, "err", err)
		return nil, false
	}
	s.metrics.ObserveTTS("ok", elapsed)
	s.logger.Debug("speech synthesized",
		"voice", providerVoice,
		"size", humanize.Bytes(uint64(len(wav))),
		"seconds", fmt.Sprintf("%.2f", audio.RealtimeSpeech.Duration(len(pcm))),
		"elapsed", elapsed,
	)
	return wav, true
}

// PlaceholderURL mirrors the URL shape clients received before real synthesis existed.
func PlaceholderURL(text string, now time.Time) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("https://tts.placeholder.com/audio/%s_%d.mp3", hex.EncodeToString(sum[:])[:8], now.Unix())
}
