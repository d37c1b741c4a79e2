package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsbrief/internal/config"
	"newsbrief/internal/discovery"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "newsbrief/1.0"
	// maxDocumentBytes bounds the HTML handed to the model.
	maxDocumentBytes = 50_000
	maxExtracted     = 5
)

const extractSystemPrompt = "You extract article listings from blog homepages. Respond with valid JSON only."

// Extractor is the fallback strategy for sources without a feed: it pulls
// the homepage and asks the LLM to pick out article links. Best effort; a
// response that cannot be parsed yields zero candidates, not an error.
type Extractor struct {
	client    *http.Client
	completer ports.StructuredCompleter
	logger    *slog.Logger
}

var _ discovery.Fetcher = (*Extractor)(nil)

// NewExtractor wires an HTTP client and the shared structured-completion
// capability.
func NewExtractor(client *http.Client, completer ports.StructuredCompleter, logger *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Extractor{client: client, completer: completer, logger: logger}
}

// Name identifies the strategy inside the registry.
func (e *Extractor) Name() string {
	return discovery.StrategyHomepage
}

// Fetch retrieves the homepage, trims it down to the parts worth reading,
// and delegates candidate extraction to the LLM.
func (e *Extractor) Fetch(ctx context.Context, source config.SourceConfig) ([]domain.Candidate, error) {
	if e.completer == nil {
		return nil, fmt.Errorf("homepage extractor requires a completer")
	}

	html, err := e.fetchDocument(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	prompt := buildExtractionPrompt(source.URL, condenseDocument(html))

	var extracted []extractedItem
	if err := e.completer.StructuredCompletion(ctx, extractSystemPrompt, prompt, &extracted); err != nil {
		if e.logger != nil {
			e.logger.Warn("homepage extraction unparseable", "source", source.Name, "error", err)
		}
		return nil, nil
	}

	return e.toCandidates(extracted, source), nil
}

type extractedItem struct {
	Title          string `json:"title"`
	Link           string `json:"link"`
	ContentSnippet string `json:"contentSnippet"`
}

func (e *Extractor) fetchDocument(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request homepage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("homepage returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes*4))
	if err != nil {
		return "", fmt.Errorf("read homepage: %w", err)
	}

	return string(raw), nil
}

// condenseDocument strips script/style noise so the truncated document keeps
// as much usable markup as possible, then cuts it at maxDocumentBytes.
func condenseDocument(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find("script, style, noscript, svg, iframe").Remove()
		if cleaned, hErr := doc.Html(); hErr == nil {
			html = cleaned
		}
	}

	if len(html) > maxDocumentBytes {
		html = html[:maxDocumentBytes]
	}
	return html
}

func buildExtractionPrompt(pageURL, html string) string {
	return fmt.Sprintf(`You are analyzing a blog homepage to find recent articles. Extract blog post/article links from this HTML.

For each article you find, provide:
- title: The article title
- link: The article URL as it appears in the HTML (relative URLs are fine)
- contentSnippet: A brief description if available (max 200 chars)

Only include actual blog posts/articles, not navigation links, about pages, etc.

HTML:
%s

Respond with a JSON array (max %d articles):
[
  {
    "title": "Article Title",
    "link": "/blog/article",
    "contentSnippet": "Brief description..."
  }
]`, html, maxExtracted)
}

func (e *Extractor) toCandidates(items []extractedItem, source config.SourceConfig) []domain.Candidate {
	base, err := url.Parse(source.URL)
	if err != nil {
		base = nil
	}

	candidates := make([]domain.Candidate, 0, maxExtracted)
	for _, item := range items {
		if len(candidates) == maxExtracted {
			break
		}

		title := strings.TrimSpace(item.Title)
		link := resolveLink(base, strings.TrimSpace(item.Link))
		if title == "" || link == "" {
			continue
		}

		candidates = append(candidates, domain.Candidate{
			Title:      title,
			Link:       link,
			Snippet:    strings.TrimSpace(item.ContentSnippet),
			Source:     source.Name,
			Categories: source.Categories,
		})
	}
	return candidates
}

// resolveLink absolutizes relative links against the homepage URL.
func resolveLink(base *url.URL, link string) string {
	if link == "" {
		return ""
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
