package domain

import "time"

// Candidate is a content item discovered from a source, before scoring.
// Stages never mutate a Candidate in place; each stage derives new values.
type Candidate struct {
	Title       string
	Link        string
	PublishedAt *time.Time
	Snippet     string
	Source      string
	Categories  []string
}

// ScoredCandidate decorates a Candidate with LLM scoring output and a
// derived freshness weight.
type ScoredCandidate struct {
	Candidate
	Score            float64
	Reasoning        string
	SuggestedSection SectionType
	Freshness        float64
}

// AdjustedScore biases ranking toward newer content: freshness contributes
// up to `bonus` extra points on top of the raw relevance score.
func (s ScoredCandidate) AdjustedScore(bonus float64) float64 {
	return s.Score + s.Freshness*bonus
}
