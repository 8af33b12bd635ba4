package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sceneling/sceneling/internal/config"
	"github.com/sceneling/sceneling/internal/dialogue"
	"github.com/sceneling/sceneling/internal/logging"
	"github.com/sceneling/sceneling/internal/observability"
	"github.com/sceneling/sceneling/internal/scene"
	"github.com/sceneling/sceneling/internal/transcript"
)

type ChatService interface {
	Stream(ctx context.Context, turn dialogue.Turn, stream string, emit dialogue.Emitter) (dialogue.State, error)
	Reply(ctx context.Context, turn dialogue.Turn) string
}

type Translator interface {
	Translate(ctx context.Context, text, sessionID string) (string, bool)
}

type Speaker interface {
	Speak(ctx context.Context, text, voice string) (string, bool)
	SpeakWAV(ctx context.Context, text, voice string) ([]byte, bool)
}

type SceneAnalyzer interface {
	Analyze(ctx context.Context, img scene.Image, cefr string) (*scene.Analysis, error)
	Stream(ctx context.Context, img scene.Image, cefr string, emit scene.Emitter) error
}

type Punctuator interface {
	Punctuate(ctx context.Context, text, language string) string
}

// Deps are the collaborators behind the routes. Nil members answer 501.
type Deps struct {
	Chat        ChatService
	Translator  Translator
	Speaker     Speaker
	Scenes      SceneAnalyzer
	Punctuator  Punctuator
	Transcripts transcript.Store
}

type Server struct {
	cfg     config.Config
	deps    Deps
	metrics *observability.Metrics
	logger  *log.Logger
}

func New(cfg config.Config, deps Deps, metrics *observability.Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		cfg:     cfg,
		deps:    deps,
		metrics: metrics,
		logger:  logger.With("component", "http"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/chat/stream", s.handleChatStream)
		r.Post("/chat/free/stream", s.handleFreeChatStream)
		r.Get("/chat/transcripts/{conversation_id}", s.handleTranscript)

		r.Post("/translate", s.handleTranslate)

		r.Post("/tts", s.handleTTS)
		r.Post("/tts/wav", s.handleTTSWAV)
		r.Get("/tts/voices", s.handleListVoices)

		r.Post("/asr/punctuate", s.handlePunctuate)

		r.Post("/scenes/analyze", s.handleAnalyzeScene)
		r.Post("/scenes/analyze/stream", s.handleAnalyzeSceneStream)

		r.Get("/perf/latency", s.handlePerfLatency)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.cfg.AppVersion,
	})
}

// recoverer is chi's Recoverer with the panic routed through our logger.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "panic", rec)
				respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// cors answers browser preflights. Without AllowAnyOrigin only same-origin
// requests get CORS headers.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" && s.originAllowed(origin, r.Host) {
			h := w.Header()
			if s.cfg.AllowAnyOrigin {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin, host string) bool {
	if s.cfg.AllowAnyOrigin {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

const maxJSONBody = 1 << 20

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func respondUnavailable(w http.ResponseWriter, what string) {
	respondError(w, http.StatusNotImplemented, "unavailable", what+" not configured")
}
