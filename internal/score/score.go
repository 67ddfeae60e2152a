// Package score computes recency, relevance, and weighted overall scores.
// All scores live in [0,100] and every function is deterministic for a fixed
// reference time.
package score

import (
	"strings"
	"time"

	"ContentAgent/internal/domain"
)

// Params carries the validated scoring configuration for one run.
type Params struct {
	WindowDays      int
	RecencyWeight   float64
	RelevanceWeight float64
	Taxonomy        domain.Taxonomy
}

// Recency decays linearly from 100 (published now or in the future) to 0 at
// the window edge. Undated articles and non-positive windows score 0.
func Recency(publishedAt time.Time, windowDays int, reference time.Time) float64 {
	if publishedAt.IsZero() || windowDays <= 0 {
		return 0
	}

	ageDays := reference.Sub(publishedAt).Hours() / 24
	if ageDays <= 0 {
		return 100
	}

	window := float64(windowDays)
	if ageDays >= window {
		return 0
	}

	return clamp(100 * (1 - ageDays/window))
}

// MatchedThemes returns the names of taxonomy themes with at least one
// keyword occurring in the lower-cased title+summary text, in taxonomy
// order. A theme is reported once no matter how many of its keywords hit.
func MatchedThemes(title, summary string, taxonomy domain.Taxonomy) []string {
	search := strings.ToLower(title + " " + summary)

	var matched []string
	for _, theme := range taxonomy {
		for _, keyword := range theme.Keywords {
			if strings.Contains(search, strings.ToLower(keyword)) {
				matched = append(matched, theme.Name)
				break
			}
		}
	}
	return matched
}

// Relevance is the share of taxonomy themes matched by MatchedThemes.
// Empty taxonomy scores 0.
func Relevance(title, summary string, taxonomy domain.Taxonomy) float64 {
	if len(taxonomy) == 0 {
		return 0
	}

	matched := MatchedThemes(title, summary, taxonomy)
	return clamp(100 * float64(len(matched)) / float64(len(taxonomy)))
}

// Overall combines the component scores with the configured weights. The
// weights are not re-normalized here; config validation guarantees they sum
// to 1.
func Overall(recency, relevance, recencyWeight, relevanceWeight float64) float64 {
	return clamp(recencyWeight*recency + relevanceWeight*relevance)
}

// All scores a batch against a single reference instant so long runs do not
// drift between the first and last article.
func All(articles []domain.Article, params Params, reference time.Time) []domain.Scored {
	scored := make([]domain.Scored, 0, len(articles))
	for _, article := range articles {
		recency := Recency(article.PublishedAt, params.WindowDays, reference)
		relevance := Relevance(article.Title, article.SummaryText, params.Taxonomy)
		scored = append(scored, domain.Scored{
			Article:   article,
			Recency:   recency,
			Relevance: relevance,
			Overall:   Overall(recency, relevance, params.RecencyWeight, params.RelevanceWeight),
		})
	}
	return scored
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
