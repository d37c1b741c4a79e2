package transporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/usecase"
)

type stubSource struct {
	candidates []domain.Candidate
}

func (s *stubSource) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	return s.candidates, nil
}

type stubScorer struct {
	score float64
	err   error
}

func (s *stubScorer) ScoreBatch(ctx context.Context, batch []domain.Candidate) ([]domain.ScoredCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.ScoredCandidate
	for _, c := range batch {
		out = append(out, domain.ScoredCandidate{Candidate: c, Score: s.score, Freshness: 1})
	}
	return out, nil
}

func testCandidates(n int) []domain.Candidate {
	now := time.Now().UTC()
	var out []domain.Candidate
	for i := 0; i < n; i++ {
		published := now.Add(-time.Duration(i+1) * time.Hour)
		out = append(out, domain.Candidate{
			Title:       "Story",
			Link:        "https://example.com/" + string(rune('a'+i)),
			Source:      "src-" + string(rune('a'+i)),
			Snippet:     "preview",
			PublishedAt: &published,
		})
	}
	return out
}

func newTestServer(source *stubSource, scorer *stubScorer) *Server {
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source: source,
		Scorer: scorer,
		Newsletter: config.NewsletterConfig{
			Name:       "Front-end Brief",
			Audience:   "front-end developers",
			Categories: []string{"JavaScript"},
		},
	})
	return NewServer(pipeline, nil)
}

func TestDiscoverSuccess(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubSource{candidates: testCandidates(4)}, &stubScorer{score: 90})

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/discover", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Count    int              `json:"count"`
		Sections []sectionPayload `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 4 || len(payload.Sections) != 4 {
		t.Fatalf("unexpected section count: %+v", payload)
	}
	if payload.Sections[0].Type != string(domain.SectionText) {
		t.Fatalf("first section must be the hero text section, got %s", payload.Sections[0].Type)
	}
}

func TestDiscoverNoRecentCandidates(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubSource{}, &stubScorer{score: 90})

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/discover", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var payload map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload["error"] != "no recent articles found" {
		t.Fatalf("unexpected error body: %v", payload)
	}
}

func TestDiscoverInsufficientQuality(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubSource{candidates: testCandidates(4)}, &stubScorer{score: 40})

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/discover", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var payload map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload["error"] != "not enough high-quality articles found (need at least 3)" {
		t.Fatalf("unexpected error body: %v", payload)
	}
}

func TestDiscoverGenericFailure(t *testing.T) {
	t.Parallel()

	// Fail discovery itself, not scoring: scoring failures degrade instead.
	failing := usecase.NewPipeline(usecase.PipelineDeps{
		Source: &failingSource{},
		Scorer: &stubScorer{score: 90},
	})
	server := NewServer(failing, nil)

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/discover", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var payload map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload["error"] != "failed to discover content" {
		t.Fatalf("internal detail leaked to the caller: %v", payload)
	}
}

type failingSource struct{}

func (f *failingSource) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	return nil, errors.New("upstream exploded")
}

func TestDiscoverRequiresPost(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubSource{}, &stubScorer{})

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/discover", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubSource{}, &stubScorer{})
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
