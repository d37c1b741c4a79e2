package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
)

type fakeCompleter struct {
	payload string
	err     error
	lastUser string
}

func (f *fakeCompleter) StructuredCompletion(ctx context.Context, system, user string, out any) error {
	f.lastUser = user
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}

func testNewsletter() config.NewsletterConfig {
	return config.NewsletterConfig{
		Name:       "Front-end Brief",
		Audience:   "front-end developers",
		Categories: []string{"React", "CSS", "JavaScript"},
	}
}

func TestScoreBatchMatchesByIndex(t *testing.T) {
	t.Parallel()

	published := time.Now().UTC().Add(-24 * time.Hour)
	batch := []domain.Candidate{
		{Title: "First", Link: "https://a.example/1", Source: "a", PublishedAt: &published},
		{Title: "Second", Link: "https://b.example/2", Source: "b"},
	}

	fake := &fakeCompleter{payload: `[
		{"index": 0, "score": 120, "reasoning": "great", "suggestedSection": "article"},
		{"index": 1, "score": 64, "reasoning": "ok", "suggestedSection": "news"},
		{"index": 9, "score": 50, "reasoning": "ghost", "suggestedSection": "tip"}
	]`}

	scorer := NewScorer(fake, testNewsletter())
	scored, err := scorer.ScoreBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}

	if len(scored) != 2 {
		t.Fatalf("out-of-range index should be dropped, got %d results", len(scored))
	}
	if scored[0].Link != "https://a.example/1" || scored[1].Link != "https://b.example/2" {
		t.Fatalf("results not matched to batch positions: %+v", scored)
	}
	if scored[0].Score != 100 {
		t.Fatalf("score should clamp to 100, got %v", scored[0].Score)
	}
	if scored[0].SuggestedSection != domain.SectionArticle {
		t.Fatalf("unexpected section: %s", scored[0].SuggestedSection)
	}
	if scored[1].SuggestedSection != domain.SectionArticle {
		t.Fatalf("unknown section tags should normalize to article, got %s", scored[1].SuggestedSection)
	}
}

func TestScoreBatchFreshnessDefaultsWithoutDate(t *testing.T) {
	t.Parallel()

	batch := []domain.Candidate{{Title: "Undated", Link: "https://x.example", Source: "x"}}
	fake := &fakeCompleter{payload: `[{"index": 0, "score": 80, "reasoning": "r", "suggestedSection": "tip"}]`}

	scorer := NewScorer(fake, testNewsletter())
	scored, err := scorer.ScoreBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	if scored[0].Freshness != 0.5 {
		t.Fatalf("missing publication date should yield freshness 0.5, got %v", scored[0].Freshness)
	}
}

func TestScoreBatchSurfacesCompleterErrors(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(&fakeCompleter{err: errors.New("boom")}, testNewsletter())
	if _, err := scorer.ScoreBatch(context.Background(), []domain.Candidate{{Title: "t", Link: "l"}}); err == nil {
		t.Fatalf("expected an error from a failing completer")
	}
}

func TestScoreBatchEmptyInput(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(&fakeCompleter{}, testNewsletter())
	scored, err := scorer.ScoreBatch(context.Background(), nil)
	if err != nil || scored != nil {
		t.Fatalf("empty batch should be a no-op, got %v, %v", scored, err)
	}
}
