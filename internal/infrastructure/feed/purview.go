package feed

import "log/slog"

const (
	purviewFeedURL = "https://techcommunity.microsoft.com/plugins/custom/microsoft/o365/custom-blog-rss?tid=-1817042702966616498&board=MicrosoftPurviewBlog&size=50"
	purviewPageURL = "https://techcommunity.microsoft.com/category/microsoftpurview/blog/microsoftpurviewblog"

	// Tech Community listing pages embed whole message bodies; cap the teaser.
	purviewTeaserLimit = 500
)

var purviewRules = pageRules{
	baseURL:        "https://techcommunity.microsoft.com",
	postSelector:   "article, .blog-post, .message-subject, [data-testid='blog-article'], .lia-message-body-content",
	titleSelector:  "h2 a, h3 a, .message-subject a, a.page-link, [data-testid='blog-title'] a, .lia-link-navigation",
	dateSelector:   "time, .date, .post-date, .DateTime, [data-testid='blog-date'], .lia-message-posted-on",
	authorSelector: ".author, .post-author, .user-name, [data-testid='blog-author'], .lia-user-name-link",
	teaserSelector: "p, .excerpt, .teaser, .message-body, [data-testid='blog-excerpt'], .lia-message-body",
	teaserLimit:    purviewTeaserLimit,
}

// NewPurviewScanner builds the "purview" strategy for the Microsoft Purview
// Blog on Tech Community.
func NewPurviewScanner(client *Client, logger *slog.Logger) *BlogScanner {
	return &BlogScanner{
		name:    "purview",
		feedURL: purviewFeedURL,
		pageURL: purviewPageURL,
		rules:   purviewRules,
		client:  client,
		logger:  logger,
	}
}
