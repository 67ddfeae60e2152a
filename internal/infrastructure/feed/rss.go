package feed

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"ContentAgent/internal/domain"
)

var (
	scriptBlockExpr = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagExpr         = regexp.MustCompile(`<[^>]+>`)
)

// parseRSS maps feed entries onto raw records. At most limit entries are
// considered; entries without a title or link are skipped afterwards, so the
// result can be shorter than limit.
func parseRSS(data []byte, sourceName string, limit int) ([]domain.RawRecord, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := parsed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	records := make([]domain.RawRecord, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		published := item.Published
		if published == "" {
			published = item.Updated
		}

		records = append(records, domain.RawRecord{
			Source:    sourceName,
			Title:     title,
			URL:       link,
			Published: published,
			Author:    itemAuthor(item),
			Teaser:    stripHTML(itemTeaser(item)),
		})
	}
	return records, nil
}

// itemAuthor resolves the author through the fields feeds actually use:
// the author element, the authors list, then dc:creator.
func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			return author.Name
		}
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return item.DublinCoreExt.Creator[0]
	}
	return ""
}

func itemTeaser(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

// stripHTML drops script and style blocks, replaces remaining tags with
// spaces, decodes entities, and collapses whitespace.
func stripHTML(value string) string {
	if value == "" {
		return ""
	}

	text := scriptBlockExpr.ReplaceAllString(value, " ")
	text = tagExpr.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
