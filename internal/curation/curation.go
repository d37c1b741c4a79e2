// Package curation holds the pure ranking policies applied between discovery
// and formatting. Everything here is deterministic and side-effect free.
package curation

import (
	"sort"
	"time"

	"newsbrief/internal/domain"
)

// Fixed editorial policy. These are contracts of the pipeline, not tunables.
const (
	// RecencyWindow bounds how old a candidate's publication date may be.
	RecencyWindow = 7 * 24 * time.Hour
	// MaxPerSource caps how many selected items may share one source.
	MaxPerSource = 2
	// MinScore is the relevance threshold for selection.
	MinScore = 70.0
	// MaxSelected caps the number of sections per newsletter.
	MaxSelected = 8
	// MinSelected is the smallest selection worth publishing.
	MinSelected = 3
)

const (
	oldestFreshness  = 0.3
	unknownFreshness = 0.5
)

// FilterRecent keeps candidates published within RecencyWindow of now.
// Candidates without a publication date are dropped. Running the filter on
// its own output is a no-op.
func FilterRecent(candidates []domain.Candidate, now time.Time) []domain.Candidate {
	cutoff := now.Add(-RecencyWindow)

	recent := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.PublishedAt == nil {
			continue
		}
		if c.PublishedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, c)
	}
	return recent
}

// Freshness derives a recency weight in [0.3, 1.0] from the publication age:
// published today or later scores 1.0, seven days old scores 0.3, ages in
// between interpolate linearly. A missing date scores 0.5.
func Freshness(published *time.Time, now time.Time) float64 {
	if published == nil {
		return unknownFreshness
	}

	days := now.Sub(*published).Hours() / 24
	if days <= 0 {
		return 1.0
	}
	if days >= 7 {
		return oldestFreshness
	}
	return 1.0 - (days/7)*0.7
}

// SortByAdjustedScore returns a copy sorted descending by score plus the
// freshness bonus. The input is left untouched.
func SortByAdjustedScore(scored []domain.ScoredCandidate, bonus float64) []domain.ScoredCandidate {
	sorted := make([]domain.ScoredCandidate, len(scored))
	copy(sorted, scored)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AdjustedScore(bonus) > sorted[j].AdjustedScore(bonus)
	})
	return sorted
}

// FilterDiverse drops candidates once their source already contributed
// MaxPerSource items. The input must already be sorted by descending
// adjusted score so the greedy pass keeps each source's best items.
// Idempotent over its own output.
func FilterDiverse(sorted []domain.ScoredCandidate) []domain.ScoredCandidate {
	counts := make(map[string]int)

	diverse := make([]domain.ScoredCandidate, 0, len(sorted))
	for _, c := range sorted {
		if counts[c.Source] >= MaxPerSource {
			continue
		}
		counts[c.Source]++
		diverse = append(diverse, c)
	}
	return diverse
}

// SelectTop keeps candidates scoring at least MinScore, capped at
// MaxSelected. The caller decides whether the remainder meets MinSelected.
func SelectTop(sorted []domain.ScoredCandidate) []domain.ScoredCandidate {
	selected := make([]domain.ScoredCandidate, 0, MaxSelected)
	for _, c := range sorted {
		if c.Score < MinScore {
			continue
		}
		selected = append(selected, c)
		if len(selected) == MaxSelected {
			break
		}
	}
	return selected
}
