package domain

import "time"

// RawRecord is an article exactly as a source fetcher produced it.
// Date stays in the source-native text form; parsing happens in normalization.
type RawRecord struct {
	Source    string
	Title     string
	URL       string
	Published string
	Author    string
	Teaser    string
}

// Article is the canonical form every stage after normalization works on.
// A zero PublishedAt means the source date was missing or unparseable.
type Article struct {
	Source       string
	Title        string
	CanonicalURL string
	PublishedAt  time.Time
	Author       string
	SummaryText  string
}

// DedupResult reports the survivors of deduplication together with
// per-pass removal counts. RemovedByURL + RemovedByTitle == RemovedCount.
type DedupResult struct {
	Articles       []Article
	RemovedCount   int
	RemovedByURL   int
	RemovedByTitle int
}

// Scored pairs an article with its computed scores, all in [0,100].
type Scored struct {
	Article   Article
	Overall   float64
	Recency   float64
	Relevance float64
}

// Candidate is the final enriched record written to the report.
// CollectedAt is stamped once per batch.
type Candidate struct {
	Article
	Summary        string
	KeyTopics      []string
	WhyItMatters   string
	LinkedinAngle  string
	Hashtags       []string
	ScoreOverall   float64
	ScoreRecency   float64
	ScoreRelevance float64
	CollectedAt    time.Time
}
