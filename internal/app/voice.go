package app

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sceneling/sceneling/internal/config"
	"github.com/sceneling/sceneling/internal/observability"
	"github.com/sceneling/sceneling/internal/voice"
)

type voiceSetup struct {
	speaker *voice.Speaker
	mode    string
	detail  string
}

// resolveSpeaker picks the synthesis backend: DashScope realtime when a key
// is configured, the local tone generator when offline is requested, and
// placeholder URLs otherwise.
func resolveSpeaker(cfg config.Config, offline bool, logger *log.Logger, metrics *observability.Metrics) voiceSetup {
	speakerCfg := voice.SpeakerConfig{
		DefaultVoice: cfg.TTSDefaultVoice,
		Timeout:      cfg.TTSTimeout,
	}

	if cfg.HasDashScopeKey() && !offline {
		channel := voice.NewDashScopeChannel(voice.DashScopeConfig{
			APIKey: cfg.DashScopeAPIKey,
			WSURL:  cfg.DashScopeWSURL,
			Model:  cfg.TTSModel,
		}, logger)
		bridge := voice.NewBridge(channel, cfg.TTSTimeout, logger)
		return voiceSetup{
			speaker: voice.NewSpeaker(bridge, speakerCfg, logger, metrics),
			mode:    "dashscope",
			detail:  "dashscope realtime (" + strings.TrimSpace(cfg.TTSModel) + ")",
		}
	}

	if offline {
		bridge := voice.NewBridge(voice.NewMockChannel(), cfg.TTSTimeout, logger)
		return voiceSetup{
			speaker: voice.NewSpeaker(bridge, speakerCfg, logger, metrics),
			mode:    "mock",
			detail:  "offline tone generator",
		}
	}

	speakerCfg.Placeholder = true
	return voiceSetup{
		speaker: voice.NewSpeaker(nil, speakerCfg, logger, metrics),
		mode:    "placeholder",
		detail:  "placeholder urls (no DASHSCOPE_API_KEY)",
	}
}
