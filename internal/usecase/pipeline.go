package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/curation"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// Pipeline-level preconditions surfaced to the caller. Everything below
// these two recovers locally into degraded output.
var (
	// ErrNoRecentCandidates means discovery produced nothing inside the
	// recency window.
	ErrNoRecentCandidates = errors.New("no recent candidates found")
	// ErrInsufficientQuality means fewer than the minimum number of
	// candidates cleared the score threshold.
	ErrInsufficientQuality = errors.New("not enough high-quality candidates")
)

// PipelineDeps wires all driven adapters into the discovery pipeline.
type PipelineDeps struct {
	Source     ports.CandidateSource
	Scorer     ports.RelevanceScorer
	Formatter  ports.SectionFormatter
	Repository ports.DraftRepository
	Notifier   ports.ReviewNotifier
	Newsletter config.NewsletterConfig
	Curation   config.CurationConfig
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline implements the content discovery and curation workflow:
// fetch, recency-filter, score, diversity-filter, select, format, persist.
type Pipeline struct {
	source     ports.CandidateSource
	scorer     ports.RelevanceScorer
	formatter  ports.SectionFormatter
	repository ports.DraftRepository
	notifier   ports.ReviewNotifier
	newsletter config.NewsletterConfig
	policy     config.CurationConfig
	logger     *slog.Logger
	now        func() time.Time
}

// Result carries the formatted draft and, when persistence is configured,
// the identity the collaborator assigned.
type Result struct {
	Draft domain.Draft
	Saved *domain.SavedDraft
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	policy := deps.Curation
	if policy.BatchSize <= 0 {
		policy.BatchSize = 10
	}
	if policy.FreshnessBonus <= 0 {
		policy.FreshnessBonus = 10
	}

	return &Pipeline{
		source:     deps.Source,
		scorer:     deps.Scorer,
		formatter:  deps.Formatter,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		newsletter: deps.Newsletter,
		policy:     policy,
		logger:     deps.Logger,
		now:        now,
	}
}

// Run executes one end-to-end discovery pass. title may be empty; a weekly
// default is derived from the newsletter name and the current date.
func (p *Pipeline) Run(ctx context.Context, title string) (*Result, error) {
	now := p.now().UTC()

	candidates, err := p.source.FetchCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	recent := curation.FilterRecent(candidates, now)
	p.info("discovery", "fetched", len(candidates), "recent", len(recent))
	if len(recent) == 0 {
		return nil, ErrNoRecentCandidates
	}

	scored := p.scoreAll(ctx, recent)
	p.info("scoring done", "scored", len(scored))

	sorted := curation.SortByAdjustedScore(scored, p.policy.FreshnessBonus)
	diverse := curation.FilterDiverse(sorted)
	selected := curation.SelectTop(diverse)
	if len(selected) < curation.MinSelected {
		p.info("selection below minimum", "selected", len(selected), "minimum", curation.MinSelected)
		return nil, ErrInsufficientQuality
	}
	p.info("selection done", "selected", len(selected))

	draft := domain.Draft{
		Title:    p.draftTitle(title, now),
		Sections: p.formatSections(ctx, selected),
	}

	result := &Result{Draft: draft}
	if p.repository != nil {
		saved, err := p.repository.SaveDraft(ctx, draft)
		if err != nil {
			return nil, fmt.Errorf("persist draft: %w", err)
		}
		result.Saved = &saved
		p.info("draft persisted", "id", saved.ID, "status", saved.Status)

		if p.notifier != nil {
			if err := p.notifier.NotifyDraft(ctx, saved, draft.Title, len(draft.Sections)); err != nil {
				p.warn("review notification failed", "error", err)
			}
		}
	}

	return result, nil
}

// scoreAll walks the recent candidates batch by batch. A failing batch is
// logged and its candidates are dropped from ranking; the run continues.
func (p *Pipeline) scoreAll(ctx context.Context, candidates []domain.Candidate) []domain.ScoredCandidate {
	if p.scorer == nil {
		return nil
	}

	var scored []domain.ScoredCandidate
	for start := 0; start < len(candidates); start += p.policy.BatchSize {
		end := start + p.policy.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		batch := candidates[start:end]
		results, err := p.scorer.ScoreBatch(ctx, batch)
		if err != nil {
			p.warn("scoring batch failed", "offset", start, "size", len(batch), "error", err)
			continue
		}
		scored = append(scored, results...)
	}
	return scored
}

// formatSections turns the selected candidates into sections. The first
// (highest-ranked) candidate becomes the hero text section; the rest are
// articles. A failed formatting call falls back to deterministic fields
// built from the candidate itself so no selected item is ever dropped.
func (p *Pipeline) formatSections(ctx context.Context, selected []domain.ScoredCandidate) []domain.Section {
	sections := make([]domain.Section, 0, len(selected))
	for i, candidate := range selected {
		hero := i == 0

		if p.formatter != nil {
			section, err := p.formatter.FormatSection(ctx, candidate, hero)
			if err == nil {
				sections = append(sections, section)
				continue
			}
			p.warn("formatting failed, using fallback", "link", candidate.Link, "error", err)
		}

		sections = append(sections, p.fallbackSection(candidate, hero))
	}
	return sections
}

func (p *Pipeline) fallbackSection(candidate domain.ScoredCandidate, hero bool) domain.Section {
	snippet := candidate.Snippet
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	if hero {
		return domain.Section{
			Type:         domain.SectionText,
			Title:        candidate.Title,
			Link:         candidate.Link,
			Subtitle:     snippet,
			WhyItMatters: fmt.Sprintf("This is a significant development for %s.", p.newsletter.Audience),
		}
	}

	category := ""
	if len(p.newsletter.Categories) > 0 {
		category = p.newsletter.Categories[0]
	}

	return domain.Section{
		Type:       domain.SectionArticle,
		Title:      candidate.Title,
		Link:       candidate.Link,
		Summary:    snippet,
		Category:   category,
		SourceName: candidate.Source,
	}
}

func (p *Pipeline) draftTitle(title string, now time.Time) string {
	if title != "" {
		return title
	}
	return fmt.Sprintf("%s - Week of %s", p.newsletter.Name, now.Format("Jan 2, 2006"))
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
