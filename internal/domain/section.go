package domain

import (
	"fmt"
	"strings"
	"time"
)

// SectionType enumerates the kinds of newsletter sections.
type SectionType string

const (
	SectionArticle SectionType = "article"
	SectionTip     SectionType = "tip"
	SectionTool    SectionType = "tool"
	SectionText    SectionType = "text"
)

// Valid reports whether the tag belongs to the closed enumeration.
func (t SectionType) Valid() bool {
	switch t {
	case SectionArticle, SectionTip, SectionTool, SectionText:
		return true
	}
	return false
}

// ParseSectionType normalizes free text into a SectionType, defaulting to
// "article" for anything outside the vocabulary.
func ParseSectionType(value string) SectionType {
	t := SectionType(strings.ToLower(strings.TrimSpace(value)))
	if t.Valid() {
		return t
	}
	return SectionArticle
}

const whyItMattersLabel = "**Why it matters:**"

// Section is one formatted newsletter entry. The sub-fields are carried as
// first-class values; the labeled single-string encoding expected by the
// downstream renderer is produced only at the render boundary.
type Section struct {
	Type         SectionType
	Title        string
	Link         string
	Subtitle     string // hero only
	WhyItMatters string // hero only
	Summary      string
	Category     string // article only
	SourceName   string
}

// RenderDescription flattens the sub-fields into the fixed textual
// convention:
//
//	text:    subtitle\n\n**Why it matters:** explanation
//	article: summary\n*Category: X*\n*Source: Y*
//	tip/tool: summary\n*Source: Y*
func (s Section) RenderDescription() string {
	switch s.Type {
	case SectionText:
		lead := s.Subtitle
		if lead == "" {
			lead = s.Summary
		}
		return fmt.Sprintf("%s\n\n%s %s", lead, whyItMattersLabel, s.WhyItMatters)
	case SectionArticle:
		return fmt.Sprintf("%s\n*Category: %s*\n*Source: %s*", s.Summary, s.Category, s.SourceName)
	default:
		return fmt.Sprintf("%s\n*Source: %s*", s.Summary, s.SourceName)
	}
}

// ParseDescription recovers the sub-fields from a rendered description.
// It is the inverse of RenderDescription for every section type.
func ParseDescription(t SectionType, description string) Section {
	section := Section{Type: t}

	if t == SectionText {
		parts := strings.SplitN(description, "\n\n"+whyItMattersLabel, 2)
		section.Subtitle = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			section.WhyItMatters = strings.TrimSpace(parts[1])
		}
		return section
	}

	for _, line := range strings.Split(description, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "*Category: "):
			section.Category = strings.TrimSuffix(strings.TrimPrefix(trimmed, "*Category: "), "*")
		case strings.HasPrefix(trimmed, "*Source: "):
			section.SourceName = strings.TrimSuffix(strings.TrimPrefix(trimmed, "*Source: "), "*")
		default:
			if section.Summary == "" {
				section.Summary = trimmed
			} else {
				section.Summary += "\n" + trimmed
			}
		}
	}
	section.Summary = strings.TrimSpace(section.Summary)
	return section
}

// Draft is the final pipeline artifact handed to the persistence
// collaborator. It has no identity until persisted.
type Draft struct {
	Title    string
	Sections []Section
}

// SavedDraft is the identity assigned by the persistence collaborator.
type SavedDraft struct {
	ID        string
	Status    string
	CreatedAt time.Time
}
