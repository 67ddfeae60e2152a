package ports

import (
	"context"
	"time"

	"ContentAgent/internal/domain"
)

// Fetcher pulls raw article records from one upstream source.
type Fetcher interface {
	SourceName() string
	Fetch(ctx context.Context, limit int) ([]domain.RawRecord, error)
}

// HistoryRepository persists selected articles across runs so repeats can be
// excluded from future selections.
type HistoryRepository interface {
	PreviouslySelected(ctx context.Context, urls []string) (map[string]bool, error)
	SaveSelected(ctx context.Context, runID string, candidates []domain.Candidate) error
}

// ReportWriter persists run artifacts and returns the written file paths.
type ReportWriter interface {
	WriteCandidates(candidates []domain.Candidate, stamp time.Time) (string, error)
	WriteRunLog(metrics domain.RunMetrics, stamp time.Time) (string, error)
	WritePosts(posts []domain.PostDraft, stamp time.Time) (string, error)
}

// Uploader ships a report file to external storage and returns its file id.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// PostWriter drafts a publishable LinkedIn post for one candidate.
type PostWriter interface {
	Draft(ctx context.Context, candidate domain.Candidate) (string, error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
