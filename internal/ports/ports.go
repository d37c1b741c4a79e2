package ports

import (
	"context"
	"time"

	"newsbrief/internal/domain"
)

// CandidateSource pulls candidate content items from all configured sources.
// Implementations must tolerate individual source failures and return the
// candidates that could be fetched.
type CandidateSource interface {
	FetchCandidates(ctx context.Context) ([]domain.Candidate, error)
}

// StructuredCompleter sends a prompt to a generative text service and decodes
// the JSON payload embedded in the reply into out. All LLM call sites share
// one implementation so fence-stripping and parse policy live in one place.
type StructuredCompleter interface {
	StructuredCompletion(ctx context.Context, system, user string, out any) error
}

// RelevanceScorer scores one batch of candidates. The returned slice may be
// shorter than the input when the model skips entries; order carries no
// meaning because the pipeline re-sorts the aggregate.
type RelevanceScorer interface {
	ScoreBatch(ctx context.Context, batch []domain.Candidate) ([]domain.ScoredCandidate, error)
}

// SectionFormatter produces polished newsletter fields for one selected
// candidate. hero selects the featured treatment.
type SectionFormatter interface {
	FormatSection(ctx context.Context, candidate domain.ScoredCandidate, hero bool) (domain.Section, error)
}

// DraftRepository hands a finished draft to the persistence collaborator,
// which assigns identity and draft status. Single attempt, no retries.
type DraftRepository interface {
	SaveDraft(ctx context.Context, draft domain.Draft) (domain.SavedDraft, error)
}

// ReviewNotifier announces a persisted draft to the editors' channel.
type ReviewNotifier interface {
	NotifyDraft(ctx context.Context, saved domain.SavedDraft, title string, sectionCount int) error
}

// Scheduler controls when discovery runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
