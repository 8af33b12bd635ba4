package httpapi

import (
	"net/http"
	"strings"

	"github.com/sceneling/sceneling/internal/translation"
)

type translateRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

type translateResponse struct {
	Translation string `json:"translation"`
	SessionID   string `json:"session_id"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Translator == nil {
		respondUnavailable(w, "translation")
		return
	}
	var req translateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = translation.DefaultSession
	}

	out, ok := s.deps.Translator.Translate(r.Context(), req.Text, sessionID)
	if !ok {
		respondError(w, http.StatusBadGateway, "translation_failed", "translation unavailable")
		return
	}
	respondJSON(w, http.StatusOK, translateResponse{Translation: out, SessionID: sessionID})
}
