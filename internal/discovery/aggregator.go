package discovery

import (
	"context"
	"log/slog"
	"sync"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// Aggregator implements ports.CandidateSource over the strategy registry.
// Feed sources are fetched concurrently; homepage-scrape sources run one at
// a time because that path burns LLM calls and third-party goodwill. A
// failing source contributes zero candidates, never an aggregate error.
type Aggregator struct {
	registry *Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*Aggregator)(nil)

// NewAggregator wires the fetch registry with config-defined sources.
func NewAggregator(registry *Registry, sources []config.SourceConfig, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		registry: registry,
		sources:  sources,
		logger:   logger,
	}
}

// FetchCandidates retrieves candidates from every configured source and
// deduplicates them by link. Completion waits for all outstanding fetches.
func (a *Aggregator) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	var concurrent, serial []config.SourceConfig
	for _, src := range a.sources {
		if StrategyFor(src) == StrategyFeed {
			concurrent = append(concurrent, src)
		} else {
			serial = append(serial, src)
		}
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		collected []domain.Candidate
	)

	for _, src := range concurrent {
		wg.Add(1)
		go func(src config.SourceConfig) {
			defer wg.Done()
			items := a.fetchOne(ctx, src)
			mu.Lock()
			collected = append(collected, items...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	for _, src := range serial {
		collected = append(collected, a.fetchOne(ctx, src)...)
	}

	deduped := dedupeByLink(collected)
	a.debug("discovery done", "sources", len(a.sources), "candidates", len(deduped))
	return deduped, nil
}

func (a *Aggregator) fetchOne(ctx context.Context, src config.SourceConfig) []domain.Candidate {
	strategy, err := a.registry.Resolve(StrategyFor(src))
	if err != nil {
		a.warn("source skipped", "source", src.Name, "error", err)
		return nil
	}

	items, err := strategy.Fetch(ctx, src)
	if err != nil {
		a.warn("source fetch failed", "source", src.Name, "strategy", strategy.Name(), "error", err)
		return nil
	}

	for i := range items {
		if items[i].Source == "" {
			items[i].Source = src.Name
		}
	}
	a.debug("source produced candidates", "source", src.Name, "count", len(items))
	return items
}

// dedupeByLink treats candidates sharing a link as the same item and keeps
// the first occurrence.
func dedupeByLink(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))

	unique := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Link == "" || c.Title == "" {
			continue
		}
		if _, ok := seen[c.Link]; ok {
			continue
		}
		seen[c.Link] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
