package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/curation"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

const scoreSystemPrompt = "You are an experienced newsletter curator. Respond with valid JSON only."

// Scorer asks the model to rate one batch of candidates for newsletter
// inclusion. Results are matched back to the batch strictly by index, so
// the prompt enumerates candidates in submission order.
type Scorer struct {
	completer  ports.StructuredCompleter
	newsletter config.NewsletterConfig
	now        func() time.Time
}

var _ ports.RelevanceScorer = (*Scorer)(nil)

// NewScorer wires the structured-completion capability with the newsletter
// identity that shapes the evaluation criteria.
func NewScorer(completer ports.StructuredCompleter, newsletter config.NewsletterConfig) *Scorer {
	return &Scorer{
		completer:  completer,
		newsletter: newsletter,
		now:        time.Now,
	}
}

type scoreRecord struct {
	Index            int     `json:"index"`
	Score            float64 `json:"score"`
	Reasoning        string  `json:"reasoning"`
	SuggestedSection string  `json:"suggestedSection"`
}

// ScoreBatch scores the batch in a single LLM call. A record whose index
// falls outside the batch is ignored; candidates the model skipped are
// absent from the result.
func (s *Scorer) ScoreBatch(ctx context.Context, batch []domain.Candidate) ([]domain.ScoredCandidate, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	if s.completer == nil {
		return nil, fmt.Errorf("scorer requires a completer")
	}

	var records []scoreRecord
	if err := s.completer.StructuredCompletion(ctx, scoreSystemPrompt, s.buildPrompt(batch), &records); err != nil {
		return nil, fmt.Errorf("score batch: %w", err)
	}

	now := s.now()
	scored := make([]domain.ScoredCandidate, 0, len(records))
	for _, record := range records {
		if record.Index < 0 || record.Index >= len(batch) {
			continue
		}
		candidate := batch[record.Index]

		scored = append(scored, domain.ScoredCandidate{
			Candidate:        candidate,
			Score:            clampScore(record.Score),
			Reasoning:        record.Reasoning,
			SuggestedSection: domain.ParseSectionType(record.SuggestedSection),
			Freshness:        curation.Freshness(candidate.PublishedAt, now),
		})
	}

	return scored, nil
}

func (s *Scorer) buildPrompt(batch []domain.Candidate) string {
	var listing strings.Builder
	for i, c := range batch {
		date := "Unknown"
		if c.PublishedAt != nil {
			date = c.PublishedAt.Format(time.RFC1123)
		}
		preview := c.Snippet
		if len(preview) > 200 {
			preview = preview[:200]
		}
		if preview == "" {
			preview = "No preview available"
		}

		fmt.Fprintf(&listing, "\n%d. Title: %s\n   Source: %s\n   Date: %s\n   Preview: %s\n",
			i+1, c.Title, c.Source, date, preview)
	}

	return fmt.Sprintf(`You are a newsletter curator for %q, a weekly newsletter for %s.

Analyze these articles and score each one (0-100) based on:
1. Relevance to %s
2. Quality and depth of content
3. Actionability (can readers apply this?)
4. Timeliness (is this newsworthy/important now?)
5. Uniqueness (not just rehashing basics)

For each article, also suggest the best section type:
- "article": In-depth tutorials, guides, or analysis
- "tip": Quick tips, tricks, or best practices
- "tool": New tools, libraries, or resources
- "text": News, opinions, or discussions

Articles to analyze:
%s
Respond with a JSON array of scores (one per article, in order):
[
  {
    "index": 0,
    "score": 85,
    "reasoning": "Why this article earned its score",
    "suggestedSection": "article"
  }
]`, s.newsletter.Name, s.newsletter.Audience, s.newsletter.Audience, listing.String())
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
