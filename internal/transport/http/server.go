package transporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"newsbrief/internal/usecase"
)

// runTimeout bounds one HTTP-triggered discovery pass. The pipeline makes
// many serialized LLM calls, so this is generous.
const runTimeout = 10 * time.Minute

// Server exposes the discovery pipeline as an HTTP action.
type Server struct {
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// NewServer wires the pipeline behind the trigger endpoint.
func NewServer(pipeline *usecase.Pipeline, logger *slog.Logger) *Server {
	return &Server{pipeline: pipeline, logger: logger}
}

// Routes returns the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.health)
	mux.HandleFunc("/api/discover", s.handleDiscover)
	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sectionPayload struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
	defer cancel()

	result, err := s.pipeline.Run(ctx, "")
	switch {
	case errors.Is(err, usecase.ErrNoRecentCandidates):
		writeError(w, http.StatusNotFound, "no recent articles found")
		return
	case errors.Is(err, usecase.ErrInsufficientQuality):
		writeError(w, http.StatusNotFound, "not enough high-quality articles found (need at least 3)")
		return
	case err != nil:
		if s.logger != nil {
			s.logger.Error("content discovery failed", "error", err)
		}
		writeError(w, http.StatusInternalServerError, "failed to discover content")
		return
	}

	sections := make([]sectionPayload, 0, len(result.Draft.Sections))
	for _, section := range result.Draft.Sections {
		sections = append(sections, sectionPayload{
			Type:        string(section.Type),
			Title:       section.Title,
			Description: section.RenderDescription(),
			URL:         section.Link,
		})
	}

	response := map[string]any{
		"title":    result.Draft.Title,
		"sections": sections,
		"count":    len(sections),
	}
	if result.Saved != nil {
		response["draft_id"] = result.Saved.ID
		response["status"] = result.Saved.Status
	}
	writeJSON(w, http.StatusOK, response)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
