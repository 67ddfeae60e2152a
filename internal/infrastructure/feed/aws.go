package feed

import "log/slog"

const (
	awsFeedURL = "https://aws.amazon.com/blogs/aws/feed/"
	awsPageURL = "https://aws.amazon.com/blogs/aws/"
)

var awsRules = pageRules{
	baseURL:        "https://aws.amazon.com",
	postSelector:   "article, .blog-post, .lb-post",
	titleSelector:  "h2 a, h3 a, .blog-post-title a, a.title",
	dateSelector:   "time, .date, .post-date, .lb-post-date",
	authorSelector: ".author, .post-author, .lb-post-author",
	teaserSelector: "p, .excerpt, .teaser, .lb-post-excerpt",
}

// NewAWSNewsScanner builds the "aws-news" strategy for the AWS News Blog.
func NewAWSNewsScanner(client *Client, logger *slog.Logger) *BlogScanner {
	return &BlogScanner{
		name:    "aws-news",
		feedURL: awsFeedURL,
		pageURL: awsPageURL,
		rules:   awsRules,
		client:  client,
		logger:  logger,
	}
}
