package llm

import (
	"context"
	"fmt"
	"strings"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

const formatSystemPrompt = "You are a newsletter editor. Respond with valid JSON only."

// Formatter asks the model to polish one selected candidate into newsletter
// section fields. Failures surface as errors; the pipeline owns the
// deterministic fallback so the output schema stays uniform.
type Formatter struct {
	completer  ports.StructuredCompleter
	newsletter config.NewsletterConfig
}

var _ ports.SectionFormatter = (*Formatter)(nil)

// NewFormatter wires the structured-completion capability with the
// newsletter identity and category vocabulary.
func NewFormatter(completer ports.StructuredCompleter, newsletter config.NewsletterConfig) *Formatter {
	return &Formatter{completer: completer, newsletter: newsletter}
}

type formatRecord struct {
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Subtitle     string `json:"subtitle"`
	WhyItMatters string `json:"whyItMatters"`
	Category     string `json:"category"`
}

// FormatSection produces the polished fields for one candidate. The hero
// gets a subtitle and why-it-matters treatment; everything else gets a
// summary, a category from the closed set, and its source name.
func (f *Formatter) FormatSection(ctx context.Context, candidate domain.ScoredCandidate, hero bool) (domain.Section, error) {
	if f.completer == nil {
		return domain.Section{}, fmt.Errorf("formatter requires a completer")
	}

	var record formatRecord
	if err := f.completer.StructuredCompletion(ctx, formatSystemPrompt, f.buildPrompt(candidate, hero), &record); err != nil {
		return domain.Section{}, fmt.Errorf("format %s: %w", candidate.Link, err)
	}

	title := strings.TrimSpace(record.Title)
	if title == "" {
		title = candidate.Title
	}

	if hero {
		return domain.Section{
			Type:         domain.SectionText,
			Title:        title,
			Link:         candidate.Link,
			Subtitle:     strings.TrimSpace(record.Subtitle),
			WhyItMatters: strings.TrimSpace(record.WhyItMatters),
		}, nil
	}

	return domain.Section{
		Type:       domain.SectionArticle,
		Title:      title,
		Link:       candidate.Link,
		Summary:    strings.TrimSpace(record.Summary),
		Category:   f.pickCategory(record.Category),
		SourceName: candidate.Source,
	}, nil
}

func (f *Formatter) buildPrompt(candidate domain.ScoredCandidate, hero bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are the editor of %q, a weekly newsletter for %s.

Polish this story for the newsletter:

Title: %s
URL: %s
Source: %s
Preview: %s

`, f.newsletter.Name, f.newsletter.Audience,
		candidate.Title, candidate.Link, candidate.Source, preview(candidate))

	if hero {
		sb.WriteString(`This is the featured hero story. Return a JSON object with:
- title: A compelling title (not just the original article title, max 80 characters)
- subtitle: An engaging one-sentence hook that adds context
- whyItMatters: 2-3 sentences explaining the significance and impact for the readers

Return ONLY the JSON object, no other text.`)
		return sb.String()
	}

	fmt.Fprintf(&sb, `Return a JSON object with:
- title: A clear, concise title (max 80 characters)
- summary: 2-3 sentences that capture the key takeaway (max 200 characters)
- category: Choose ONE from: %s

Return ONLY the JSON object, no other text.`, strings.Join(f.newsletter.Categories, ", "))
	return sb.String()
}

// pickCategory keeps the model inside the closed category set.
func (f *Formatter) pickCategory(category string) string {
	category = strings.TrimSpace(category)
	for _, known := range f.newsletter.Categories {
		if strings.EqualFold(known, category) {
			return known
		}
	}
	if len(f.newsletter.Categories) > 0 {
		return f.newsletter.Categories[0]
	}
	return category
}

func preview(candidate domain.ScoredCandidate) string {
	text := candidate.Snippet
	if len(text) > 300 {
		text = text[:300]
	}
	if text == "" {
		text = candidate.Reasoning
	}
	return text
}
