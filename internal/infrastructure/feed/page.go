package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentAgent/internal/domain"
)

// pageRules describes how to pull posts out of one blog's listing markup.
type pageRules struct {
	baseURL        string
	postSelector   string
	titleSelector  string
	dateSelector   string
	authorSelector string
	teaserSelector string
	teaserLimit    int
}

// extractPosts converts the post elements matched by the rules into raw
// records. At most limit elements are considered; elements without a usable
// title link are skipped afterwards, so the result can be shorter than limit.
func extractPosts(doc *goquery.Document, rules pageRules, sourceName string, limit int) []domain.RawRecord {
	var records []domain.RawRecord

	doc.Find(rules.postSelector).EachWithBreak(func(i int, post *goquery.Selection) bool {
		if limit > 0 && i >= limit {
			return false
		}

		if record, ok := parsePost(post, rules, sourceName); ok {
			records = append(records, record)
		}
		return true
	})
	return records
}

func parsePost(post *goquery.Selection, rules pageRules, sourceName string) (domain.RawRecord, bool) {
	titleLink := post.Find(rules.titleSelector).First()
	title := strings.TrimSpace(titleLink.Text())
	href, _ := titleLink.Attr("href")
	if title == "" || href == "" {
		return domain.RawRecord{}, false
	}

	if strings.HasPrefix(href, "/") {
		href = rules.baseURL + href
	}

	var published string
	if date := post.Find(rules.dateSelector).First(); date.Length() > 0 {
		if attr, exists := date.Attr("datetime"); exists && attr != "" {
			published = attr
		} else {
			published = strings.TrimSpace(date.Text())
		}
	}

	var author string
	if node := post.Find(rules.authorSelector).First(); node.Length() > 0 {
		author = strings.TrimSpace(node.Text())
	}

	var teaser string
	if node := post.Find(rules.teaserSelector).First(); node.Length() > 0 {
		teaser = strings.TrimSpace(node.Text())
		if rules.teaserLimit > 0 {
			teaser = truncateRunes(teaser, rules.teaserLimit)
		}
	}

	return domain.RawRecord{
		Source:    sourceName,
		Title:     title,
		URL:       href,
		Published: published,
		Author:    author,
		Teaser:    teaser,
	}, true
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
