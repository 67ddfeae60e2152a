// Package filter retains articles that look like technical content:
// announcements, releases, walkthroughs, tutorials.
package filter

import (
	"strings"

	"ContentAgent/internal/domain"
)

// IsTechnical reports whether the article's title or summary contains any of
// the configured keywords, case-insensitively. With no keywords configured
// every article passes.
func IsTechnical(article domain.Article, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	search := strings.ToLower(article.Title)
	if article.SummaryText != "" {
		search += " " + strings.ToLower(article.SummaryText)
	}

	for _, keyword := range keywords {
		if strings.Contains(search, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Technical filters the batch down to technical articles. An empty keyword
// list disables the filter and returns the input untouched.
func Technical(articles []domain.Article, keywords []string) []domain.Article {
	if len(keywords) == 0 {
		return articles
	}

	kept := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if IsTechnical(article, keywords) {
			kept = append(kept, article)
		}
	}
	return kept
}
