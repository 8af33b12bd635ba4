package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sceneling/sceneling/internal/dialogue"
	"github.com/sceneling/sceneling/internal/sse"
	"github.com/sceneling/sceneling/internal/transcript"
)

type chatRequest struct {
	Message        string                    `json:"message"`
	SceneTag       string                    `json:"scene_tag"`
	SceneTagCN     string                    `json:"scene_tag_cn"`
	Category       string                    `json:"category"`
	Roles          []string                  `json:"roles"`
	UserRole       string                    `json:"user_role"`
	AIRole         string                    `json:"ai_role"`
	History        []dialogue.HistoryMessage `json:"history"`
	ConversationID string                    `json:"conversation_id,omitempty"`
}

func (r chatRequest) sceneTurn() dialogue.Turn {
	return dialogue.Turn{
		Message: r.Message,
		History: r.History,
		Scene: &dialogue.Scene{
			Tag:      r.SceneTag,
			TagCN:    r.SceneTagCN,
			Category: r.Category,
			Roles:    r.Roles,
			UserRole: r.UserRole,
			AIRole:   r.AIRole,
		},
		ConversationID: strings.TrimSpace(r.ConversationID),
	}
}

type freeChatRequest struct {
	Message        string                    `json:"message"`
	History        []dialogue.HistoryMessage `json:"history"`
	ConversationID string                    `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) decodeChat(w http.ResponseWriter, r *http.Request, out any, message func() string) bool {
	if s.deps.Chat == nil {
		respondUnavailable(w, "chat")
		return false
	}
	if err := decodeJSON(r, out); err != nil {
		if errors.Is(err, errEmptyBody) {
			respondError(w, http.StatusBadRequest, "invalid_request", "request body is required")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	if strings.TrimSpace(message()) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return false
	}
	return true
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeChat(w, r, &req, func() string { return req.Message }) {
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{Reply: s.deps.Chat.Reply(r.Context(), req.sceneTurn())})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeChat(w, r, &req, func() string { return req.Message }) {
		return
	}
	s.streamTurn(w, r, req.sceneTurn(), "chat")
}

func (s *Server) handleFreeChatStream(w http.ResponseWriter, r *http.Request) {
	var req freeChatRequest
	if !s.decodeChat(w, r, &req, func() string { return req.Message }) {
		return
	}
	s.streamTurn(w, r, dialogue.Turn{
		Message:        req.Message,
		History:        req.History,
		ConversationID: strings.TrimSpace(req.ConversationID),
	}, "free_chat")
}

func (s *Server) streamTurn(w http.ResponseWriter, r *http.Request, turn dialogue.Turn, stream string) {
	sw, err := sse.New(w)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}
	state, err := s.deps.Chat.Stream(r.Context(), turn, stream, sw)
	if err != nil {
		s.logger.Debug("chat stream ended early", "stream", stream, "state", state, "err", err)
	}
}

type transcriptResponse struct {
	ConversationID string                  `json:"conversation_id"`
	Turns          []transcript.TurnRecord `json:"turns"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if s.deps.Transcripts == nil {
		respondUnavailable(w, "transcripts")
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "conversation_id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_conversation_id", "missing conversation id")
		return
	}
	limit := transcript.DefaultRecentLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	turns, err := s.deps.Transcripts.Recent(r.Context(), id, limit)
	if err != nil {
		s.logger.Warn("transcript read failed", "conversation_id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "transcript_unavailable", "could not read transcript")
		return
	}
	if turns == nil {
		turns = []transcript.TurnRecord{}
	}
	respondJSON(w, http.StatusOK, transcriptResponse{ConversationID: id, Turns: turns})
}
