// Package normalize converts raw fetched records into the canonical article
// schema: tracking-free URLs, parsed timestamps, and collapsed NFC text.
// Every function is total; malformed input falls back instead of failing.
package normalize

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"ContentAgent/internal/domain"
)

// trackingParams are query keys dropped during URL canonicalization,
// matched case-insensitively. Keys with the utm_ prefix are dropped too.
var trackingParams = map[string]struct{}{
	"utm_source":           {},
	"utm_medium":           {},
	"utm_campaign":         {},
	"utm_term":             {},
	"utm_content":          {},
	"utm_id":               {},
	"utm_source_platform":  {},
	"utm_creative_format":  {},
	"utm_marketing_tactic": {},
	"fbclid":               {},
	"fb_action_ids":        {},
	"fb_action_types":      {},
	"fb_source":            {},
	"fb_ref":               {},
	"gclid":                {},
	"gclsrc":               {},
	"dclid":                {},
	"msclkid":              {},
	"twclid":               {},
	"li_fat_id":            {},
	"mc_cid":               {},
	"mc_eid":               {},
	"_ga":                  {},
	"_gl":                  {},
	"ref":                  {},
	"ref_src":              {},
	"ref_url":              {},
	"source":               {},
	"src":                  {},
	"trk":                  {},
	"trkinfo":              {},
	"clickid":              {},
	"click_id":             {},
	"campaign_id":          {},
	"ad_id":                {},
	"adset_id":             {},
}

const trackingPrefix = "utm_"

// CanonicalURL strips tracking query parameters and the fragment from a URL.
// Remaining query pairs keep their original relative order and encoding.
// Empty input stays empty; unparseable input is returned unchanged.
func CanonicalURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	if parsed.RawQuery != "" {
		parsed.RawQuery = stripTracking(parsed.RawQuery)
	}

	return parsed.String()
}

func stripTracking(rawQuery string) string {
	segments := strings.Split(rawQuery, "&")
	kept := make([]string, 0, len(segments))

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		key := segment
		if i := strings.Index(segment, "="); i >= 0 {
			key = segment[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		key = strings.ToLower(key)

		if _, tracked := trackingParams[key]; tracked || strings.HasPrefix(key, trackingPrefix) {
			continue
		}
		kept = append(kept, segment)
	}

	return strings.Join(kept, "&")
}

// dateLayouts covers ISO-8601, RFC-2822 variants, and natural-language forms
// seen in blog feeds. Day fields are unpadded so single digits parse too.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseDate parses a free-form date string. The second return value reports
// whether a timestamp was recognized; empty, whitespace-only, and unparseable
// input yields (zero, false). Layouts without a zone are read as UTC.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}

// Text applies Unicode NFC, trims, and collapses every whitespace run to a
// single ASCII space. Whitespace-only input collapses to the empty string.
func Text(value string) string {
	return strings.Join(strings.Fields(norm.NFC.String(value)), " ")
}

// Article normalizes a raw record field-wise. The title keeps its raw form
// when normalization would leave it empty.
func Article(raw domain.RawRecord) domain.Article {
	title := Text(raw.Title)
	if title == "" {
		title = raw.Title
	}

	publishedAt, _ := ParseDate(raw.Published)

	return domain.Article{
		Source:       raw.Source,
		Title:        title,
		CanonicalURL: CanonicalURL(raw.URL),
		PublishedAt:  publishedAt,
		Author:       Text(raw.Author),
		SummaryText:  Text(raw.Teaser),
	}
}

// Articles normalizes a batch, preserving order.
func Articles(raw []domain.RawRecord) []domain.Article {
	out := make([]domain.Article, 0, len(raw))
	for _, record := range raw {
		out = append(out, Article(record))
	}
	return out
}
