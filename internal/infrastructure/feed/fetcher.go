package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/config"
	"newsbrief/internal/discovery"
	"newsbrief/internal/domain"
)

const (
	fetchTimeout     = 10 * time.Second
	userAgent        = "newsbrief/1.0"
	maxSnippetLength = 500
)

// Fetcher retrieves candidates from RSS/Atom feeds. Malformed entries are
// skipped individually; only a failure of the whole feed surfaces as an
// error, and the aggregator downgrades that to zero candidates.
type Fetcher struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ discovery.Fetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; the per-request timeout defaults to 10s.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &Fetcher{parser: parser, logger: logger}
}

// Name identifies the strategy inside the registry.
func (f *Fetcher) Name() string {
	return discovery.StrategyFeed
}

// Fetch parses the source's feed into candidates.
func (f *Fetcher) Fetch(ctx context.Context, source config.SourceConfig) ([]domain.Candidate, error) {
	if source.Feed == "" {
		return nil, fmt.Errorf("source %s has no feed URL", source.Name)
	}

	parsed, err := f.parser.ParseURLWithContext(source.Feed, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", source.Feed, err)
	}

	candidates := make([]domain.Candidate, 0, len(parsed.Items))
	skipped := 0
	for _, item := range parsed.Items {
		if item == nil {
			skipped++
			continue
		}

		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			skipped++
			continue
		}

		candidates = append(candidates, domain.Candidate{
			Title:       title,
			Link:        link,
			PublishedAt: publishedTime(item),
			Snippet:     snippet(item),
			Source:      source.Name,
			Categories:  source.Categories,
		})
	}

	if skipped > 0 && f.logger != nil {
		f.logger.Debug("skipped malformed feed entries", "source", source.Name, "skipped", skipped)
	}

	return candidates, nil
}

func publishedTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return &t
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

func snippet(item *gofeed.Item) string {
	text := strings.TrimSpace(item.Description)
	if text == "" {
		text = strings.TrimSpace(item.Content)
	}
	if len(text) > maxSnippetLength {
		text = text[:maxSnippetLength]
	}
	return text
}
