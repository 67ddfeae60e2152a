package feed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"ContentAgent/internal/domain"
	"ContentAgent/internal/source"
)

// BlogScanner fetches one blog through its RSS feed and scrapes the listing
// page when the feed fails or comes back empty.
type BlogScanner struct {
	name    string
	feedURL string
	pageURL string
	rules   pageRules
	client  *Client
	logger  *slog.Logger
}

var _ source.Strategy = (*BlogScanner)(nil)

// Name identifies the strategy inside the registry.
func (s *BlogScanner) Name() string {
	return s.name
}

// Fetch returns at most req.Limit raw records. Request URLs override the
// strategy defaults when set.
func (s *BlogScanner) Fetch(ctx context.Context, req source.Request) ([]domain.RawRecord, error) {
	feedURL := req.FeedURL
	if feedURL == "" {
		feedURL = s.feedURL
	}

	records, err := s.fetchFeed(ctx, feedURL, req)
	if err == nil && len(records) > 0 {
		return records, nil
	}
	if err != nil {
		s.warn("rss fetch failed, scraping page", "source", req.SourceName, "error", err)
	}

	pageURL := req.PageURL
	if pageURL == "" {
		pageURL = s.pageURL
	}
	return s.fetchPage(ctx, pageURL, req)
}

func (s *BlogScanner) fetchFeed(ctx context.Context, feedURL string, req source.Request) ([]domain.RawRecord, error) {
	data, err := s.client.Get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return parseRSS(data, req.SourceName, req.Limit)
}

func (s *BlogScanner) fetchPage(ctx context.Context, pageURL string, req source.Request) ([]domain.RawRecord, error) {
	data, err := s.client.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}

	return extractPosts(doc, s.rules, req.SourceName, req.Limit), nil
}

func (s *BlogScanner) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
