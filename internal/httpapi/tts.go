package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sceneling/sceneling/internal/voice"
)

const maxTTSRunes = 1000

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type ttsResponse struct {
	AudioURL string `json:"audio_url"`
}

func (s *Server) decodeTTS(w http.ResponseWriter, r *http.Request) (ttsRequest, bool) {
	var req ttsRequest
	if s.deps.Speaker == nil {
		respondUnavailable(w, "tts")
		return req, false
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return req, false
	}
	if n := utf8.RuneCountInString(req.Text); n == 0 || n > maxTTSRunes {
		respondError(w, http.StatusBadRequest, "invalid_text_length", "文本长度需在 1-1000 字符之间")
		return req, false
	}
	if strings.TrimSpace(req.Voice) == "" {
		req.Voice = s.cfg.TTSDefaultVoice
	}
	return req, true
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTTS(w, r)
	if !ok {
		return
	}
	url, ok := s.deps.Speaker.Speak(r.Context(), req.Text, req.Voice)
	if !ok || url == "" {
		respondError(w, http.StatusInternalServerError, "tts_failed", "语音合成失败")
		return
	}
	respondJSON(w, http.StatusOK, ttsResponse{AudioURL: url})
}

func (s *Server) handleTTSWAV(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTTS(w, r)
	if !ok {
		return
	}
	wav, ok := s.deps.Speaker.SpeakWAV(r.Context(), req.Text, req.Voice)
	if !ok || len(wav) == 0 {
		respondError(w, http.StatusInternalServerError, "tts_failed", "语音合成失败")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

type voiceSummary struct {
	VoiceID       string `json:"voice_id"`
	ProviderVoice string `json:"provider_voice"`
	Language      string `json:"language"`
	Gender        string `json:"gender"`
}

type listVoicesResponse struct {
	DefaultVoiceID string         `json:"default_voice_id"`
	Voices         []voiceSummary `json:"voices"`
}

func (s *Server) handleListVoices(w http.ResponseWriter, _ *http.Request) {
	all := voice.Voices()
	out := make([]voiceSummary, 0, len(all))
	for _, v := range all {
		out = append(out, voiceSummary{
			VoiceID:       v.Name,
			ProviderVoice: v.Provider,
			Language:      v.Language,
			Gender:        v.Gender,
		})
	}
	defaultID := strings.TrimSpace(s.cfg.TTSDefaultVoice)
	if defaultID == "" {
		defaultID = "en-US-female"
	}
	respondJSON(w, http.StatusOK, listVoicesResponse{DefaultVoiceID: defaultID, Voices: out})
}
