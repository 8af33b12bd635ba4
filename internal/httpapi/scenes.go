package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/sceneling/sceneling/internal/scene"
	"github.com/sceneling/sceneling/internal/sse"
)

const maxImageBytes = 10 << 20

// readImage pulls the "image" part of a multipart upload. The CEFR level comes
// from the cefr_level query parameter or form field.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) (scene.Image, string, bool) {
	if s.deps.Scenes == nil {
		respondUnavailable(w, "scene analysis")
		return scene.Image{}, "", false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_upload", "multipart form with an image field is required")
		return scene.Image{}, "", false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_upload", "image field is required")
		return scene.Image{}, "", false
	}
	defer file.Close()

	img := scene.Image{ContentType: header.Header.Get("Content-Type")}
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		respondError(w, http.StatusBadRequest, "unsupported_media_type", "只支持图片文件")
		return scene.Image{}, "", false
	}
	img.Data, err = io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_upload", "could not read image")
		return scene.Image{}, "", false
	}
	if len(img.Data) == 0 || len(img.Data) > maxImageBytes {
		respondError(w, http.StatusBadRequest, "invalid_upload", "image must be between 1 byte and 10 MB")
		return scene.Image{}, "", false
	}

	cefr := r.URL.Query().Get("cefr_level")
	if cefr == "" {
		cefr = r.FormValue("cefr_level")
	}
	return img, scene.NormalizeCEFR(cefr), true
}

func (s *Server) handleAnalyzeScene(w http.ResponseWriter, r *http.Request) {
	img, cefr, ok := s.readImage(w, r)
	if !ok {
		return
	}
	result, err := s.deps.Scenes.Analyze(r.Context(), img, cefr)
	if err != nil {
		s.logger.Warn("scene analysis failed", "err", err)
		respondError(w, http.StatusInternalServerError, "analysis_failed", scene.FailureMessage)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeSceneStream(w http.ResponseWriter, r *http.Request) {
	img, cefr, ok := s.readImage(w, r)
	if !ok {
		return
	}
	sw, err := sse.New(w)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}
	if err := s.deps.Scenes.Stream(r.Context(), img, cefr, sw); err != nil {
		s.logger.Debug("scene stream ended early", "err", err)
	}
}
