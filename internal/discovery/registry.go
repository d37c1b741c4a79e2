package discovery

import (
	"context"
	"fmt"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
)

// Strategy names resolved from source configuration.
const (
	StrategyFeed     = "feed"
	StrategyHomepage = "homepage"
)

// Fetcher captures a single retrieval strategy (RSS feed, homepage scrape).
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, source config.SourceConfig) ([]domain.Candidate, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]Fetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(fetcher Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]Fetcher{}
	}
	r.fetchers[fetcher.Name()] = fetcher
}

// Resolve returns a fetcher by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Fetcher, error) {
	if fetcher, ok := r.fetchers[name]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("fetch strategy %s is not registered", name)
}

// StrategyFor picks the retrieval strategy for a source: feed when one is
// configured, homepage scraping otherwise.
func StrategyFor(source config.SourceConfig) string {
	if source.Feed != "" {
		return StrategyFeed
	}
	return StrategyHomepage
}
