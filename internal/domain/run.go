package domain

import "time"

// UploadStatus reports the outcome of shipping a report to external storage.
type UploadStatus string

const (
	UploadPending UploadStatus = "pending"
	UploadSuccess UploadStatus = "success"
	UploadFailed  UploadStatus = "failed"
	UploadSkipped UploadStatus = "skipped"
)

// RunMetrics aggregates one pipeline run for the JSON run log: stage
// counts, topic frequencies over the selected set, and every error string
// collected along the way.
type RunMetrics struct {
	FetchedBySource map[string]int
	NormalizedCount int
	DedupedCount    int
	SelectedCount   int
	TopTopics       []string
	AverageOverall  float64
	UploadStatus    UploadStatus
	UploadedFileID  string
	Errors          []string
	RunTimestamp    time.Time
}

// PostDraft is a generated social post paired with its source article.
type PostDraft struct {
	Title string
	URL   string
	Text  string
}
