// Package dedup removes articles that are the same piece reached through
// different URLs or retitled copies, keeping the earliest-known instance.
package dedup

import (
	"strings"

	"ContentAgent/internal/domain"
)

// Deduplicate runs two passes over the input: first by exact canonical URL,
// then by normalized title over the URL-pass survivors. Each pass keeps one
// article per key under the earliest-wins rule. The output preserves the
// order in which each surviving group first appeared.
func Deduplicate(articles []domain.Article) domain.DedupResult {
	byURL, removedByURL := collapse(articles, func(a domain.Article) string {
		return a.CanonicalURL
	})
	survivors, removedByTitle := collapse(byURL, func(a domain.Article) string {
		return TitleKey(a.Title)
	})

	return domain.DedupResult{
		Articles:       survivors,
		RemovedByURL:   removedByURL,
		RemovedByTitle: removedByTitle,
		RemovedCount:   removedByURL + removedByTitle,
	}
}

// TitleKey lower-cases a title and collapses whitespace runs so retitled
// copies that differ only in spacing or case share a dedup key.
func TitleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// collapse folds duplicates left to right: the first member of a group claims
// the output slot, later members replace it only when strictly earlier.
func collapse(articles []domain.Article, key func(domain.Article) string) ([]domain.Article, int) {
	slots := make(map[string]int, len(articles))
	survivors := make([]domain.Article, 0, len(articles))
	removed := 0

	for _, article := range articles {
		k := key(article)
		pos, seen := slots[k]
		if !seen {
			slots[k] = len(survivors)
			survivors = append(survivors, article)
			continue
		}

		removed++
		if earlier(article, survivors[pos]) {
			survivors[pos] = article
		}
	}

	return survivors, removed
}

// earlier reports whether the challenger beats the incumbent: a dated article
// beats an undated one, an earlier date beats a later one, and ties keep the
// incumbent.
func earlier(challenger, incumbent domain.Article) bool {
	switch {
	case challenger.PublishedAt.IsZero():
		return false
	case incumbent.PublishedAt.IsZero():
		return true
	default:
		return challenger.PublishedAt.Before(incumbent.PublishedAt)
	}
}
