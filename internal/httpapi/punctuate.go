package httpapi

import (
	"net/http"
	"strings"
)

type punctuateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type punctuateResponse struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
}

func (s *Server) handlePunctuate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Punctuator == nil {
		respondUnavailable(w, "punctuation")
		return
	}
	var req punctuateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "empty_text", "Empty text")
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = "en"
	}
	out := s.deps.Punctuator.Punctuate(r.Context(), req.Text, req.Language)
	respondJSON(w, http.StatusOK, punctuateResponse{Text: out, Success: true})
}
