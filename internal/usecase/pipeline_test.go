package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ContentAgent/internal/domain"
	"ContentAgent/internal/ports"
	"ContentAgent/internal/score"
)

var testNow = time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)

type stubFetcher struct {
	name    string
	records []domain.RawRecord
	err     error
}

func (s *stubFetcher) SourceName() string { return s.name }

func (s *stubFetcher) Fetch(ctx context.Context, limit int) ([]domain.RawRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type memoryReports struct {
	csvErr      error
	candidates  []domain.Candidate
	runMetrics  domain.RunMetrics
	runLogCalls int
	posts       []domain.PostDraft
}

func (m *memoryReports) WriteCandidates(candidates []domain.Candidate, stamp time.Time) (string, error) {
	if m.csvErr != nil {
		return "", m.csvErr
	}
	m.candidates = candidates
	return "out/content_candidates_20240120_120000.csv", nil
}

func (m *memoryReports) WriteRunLog(metrics domain.RunMetrics, stamp time.Time) (string, error) {
	m.runLogCalls++
	m.runMetrics = metrics
	return "out/run_log_20240120_120000.json", nil
}

func (m *memoryReports) WritePosts(posts []domain.PostDraft, stamp time.Time) (string, error) {
	m.posts = posts
	return "out/linkedin_posts_20240120_120000.csv", nil
}

type stubHistory struct {
	seen      map[string]bool
	lookupErr error
	saveErr   error
	savedRuns []string
	saved     []domain.Candidate
}

func (s *stubHistory) PreviouslySelected(ctx context.Context, urls []string) (map[string]bool, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if s.seen == nil {
		return map[string]bool{}, nil
	}
	return s.seen, nil
}

func (s *stubHistory) SaveSelected(ctx context.Context, runID string, candidates []domain.Candidate) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.savedRuns = append(s.savedRuns, runID)
	s.saved = candidates
	return nil
}

type stubUploader struct {
	id    string
	err   error
	paths []string
}

func (s *stubUploader) Upload(ctx context.Context, path string) (string, error) {
	s.paths = append(s.paths, path)
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

type stubNotifier struct {
	digests []string
}

func (s *stubNotifier) PublishDigest(ctx context.Context, digest string) error {
	s.digests = append(s.digests, digest)
	return nil
}

type stubPosts struct {
	err error
}

func (s *stubPosts) Draft(ctx context.Context, candidate domain.Candidate) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "Post about " + candidate.Title, nil
}

func testParams() Params {
	return Params{
		MaxPerSource: 50,
		Scoring: score.Params{
			WindowDays:      30,
			RecencyWeight:   0.4,
			RelevanceWeight: 0.6,
			Taxonomy: domain.Taxonomy{
				{Name: "cloud_security", Keywords: []string{"security"}},
			},
		},
		TargetSelected: 10,
		MinThreshold:   0,
	}
}

func awsRecords() []domain.RawRecord {
	return []domain.RawRecord{
		{
			Source:    "AWS Security Blog",
			Title:     "GuardDuty adds runtime security monitoring",
			URL:       "https://aws.amazon.com/blogs/security/guardduty-runtime/?utm_source=rss",
			Published: "2024-01-19T08:00:00Z",
			Teaser:    "Runtime security coverage for container workloads.",
		},
		{
			Source:    "AWS Security Blog",
			Title:     "GuardDuty adds runtime security monitoring",
			URL:       "https://aws.amazon.com/blogs/security/guardduty-runtime/",
			Published: "2024-01-18T08:00:00Z",
			Teaser:    "Runtime security coverage for container workloads.",
		},
		{
			Source:    "AWS Security Blog",
			Title:     "IAM policy security simplification",
			URL:       "https://aws.amazon.com/blogs/security/iam-policies/",
			Published: "2024-01-15T08:00:00Z",
			Teaser:    "Fewer moving parts in security policy authoring.",
		},
	}
}

func TestRunOnceHappyPath(t *testing.T) {
	t.Parallel()

	reports := &memoryReports{}
	history := &stubHistory{}
	uploader := &stubUploader{id: "file-123"}
	notifier := &stubNotifier{}

	pipeline := NewPipeline(Deps{
		Fetchers: []ports.Fetcher{
			&stubFetcher{name: "AWS Security Blog", records: awsRecords()},
			&stubFetcher{name: "Microsoft Purview Blog", err: errors.New("status 503")},
		},
		History:  history,
		Reports:  reports,
		Uploader: uploader,
		Posts:    &stubPosts{},
		Notifier: notifier,
	}, testParams())

	result := pipeline.RunOnce(context.Background(), testNow)

	if !result.Success {
		t.Fatalf("expected success, got failure with errors %v", result.Metrics.Errors)
	}
	if result.CSVPath == "" {
		t.Fatal("expected a csv path")
	}

	metrics := result.Metrics
	if got := metrics.FetchedBySource["AWS Security Blog"]; got != 3 {
		t.Errorf("expected 3 fetched from AWS, got %d", got)
	}
	if got := metrics.FetchedBySource["Microsoft Purview Blog"]; got != 0 {
		t.Errorf("expected 0 fetched from failing source, got %d", got)
	}
	if metrics.NormalizedCount != 3 {
		t.Errorf("expected 3 normalized, got %d", metrics.NormalizedCount)
	}
	if metrics.DedupedCount != 2 {
		t.Errorf("expected 2 after dedup, got %d", metrics.DedupedCount)
	}
	if metrics.SelectedCount != 2 {
		t.Errorf("expected 2 selected, got %d", metrics.SelectedCount)
	}
	if len(metrics.Errors) != 1 || !strings.Contains(metrics.Errors[0], "Microsoft Purview Blog") {
		t.Errorf("expected one fetch error naming the source, got %v", metrics.Errors)
	}
	if metrics.UploadStatus != domain.UploadSuccess {
		t.Errorf("expected upload success, got %q", metrics.UploadStatus)
	}
	if metrics.UploadedFileID != "file-123" {
		t.Errorf("expected uploaded file id file-123, got %q", metrics.UploadedFileID)
	}
	if !metrics.RunTimestamp.Equal(testNow) {
		t.Errorf("expected run timestamp %v, got %v", testNow, metrics.RunTimestamp)
	}

	// URL duplicates collapse onto the earliest-published record.
	if len(reports.candidates) != 2 {
		t.Fatalf("expected 2 candidates in csv, got %d", len(reports.candidates))
	}
	first := reports.candidates[0]
	if first.Title != "GuardDuty adds runtime security monitoring" {
		t.Errorf("expected guardduty article first, got %q", first.Title)
	}
	wantPublished := time.Date(2024, time.January, 18, 8, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(wantPublished) {
		t.Errorf("expected earliest duplicate to survive (published %v), got %v", wantPublished, first.PublishedAt)
	}
	for _, candidate := range reports.candidates {
		if !candidate.CollectedAt.Equal(testNow) {
			t.Errorf("expected collected_at %v, got %v", testNow, candidate.CollectedAt)
		}
	}

	if len(history.savedRuns) != 1 {
		t.Fatalf("expected one history save, got %d", len(history.savedRuns))
	}
	if history.savedRuns[0] == "" {
		t.Error("expected a non-empty run id")
	}
	if len(history.saved) != 2 {
		t.Errorf("expected 2 candidates saved to history, got %d", len(history.saved))
	}

	if len(uploader.paths) != 1 || uploader.paths[0] != result.CSVPath {
		t.Errorf("expected csv uploaded once, got %v", uploader.paths)
	}

	if reports.runLogCalls != 1 {
		t.Errorf("expected one run log write, got %d", reports.runLogCalls)
	}
	if len(reports.posts) != 2 {
		t.Fatalf("expected 2 post drafts, got %d", len(reports.posts))
	}
	if !strings.Contains(reports.posts[0].Text, "GuardDuty") {
		t.Errorf("unexpected draft text %q", reports.posts[0].Text)
	}

	if len(notifier.digests) != 1 {
		t.Fatalf("expected one digest, got %d", len(notifier.digests))
	}
	if !strings.Contains(notifier.digests[0], "GuardDuty adds runtime security monitoring") {
		t.Errorf("expected digest to list the selected titles, got %q", notifier.digests[0])
	}
}

func TestRunOnceCSVWriteFailure(t *testing.T) {
	t.Parallel()

	reports := &memoryReports{csvErr: errors.New("disk full")}
	history := &stubHistory{}
	uploader := &stubUploader{id: "file-123"}
	notifier := &stubNotifier{}

	pipeline := NewPipeline(Deps{
		Fetchers: []ports.Fetcher{&stubFetcher{name: "AWS Security Blog", records: awsRecords()}},
		History:  history,
		Reports:  reports,
		Uploader: uploader,
		Notifier: notifier,
	}, testParams())

	result := pipeline.RunOnce(context.Background(), testNow)

	if result.Success {
		t.Fatal("expected failure when csv cannot be written")
	}
	if result.CSVPath != "" {
		t.Errorf("expected empty csv path, got %q", result.CSVPath)
	}
	if result.Metrics.UploadStatus != domain.UploadSkipped {
		t.Errorf("expected upload skipped without a csv, got %q", result.Metrics.UploadStatus)
	}
	if len(uploader.paths) != 0 {
		t.Errorf("expected no upload attempts, got %v", uploader.paths)
	}
	if len(history.savedRuns) != 0 {
		t.Errorf("expected no history save without a csv, got %d", len(history.savedRuns))
	}
	if len(notifier.digests) != 0 {
		t.Errorf("expected no digest on failure, got %d", len(notifier.digests))
	}

	found := false
	for _, msg := range result.Metrics.Errors {
		if strings.Contains(msg, "failed to write csv") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected csv error in run log, got %v", result.Metrics.Errors)
	}

	// The run log itself still records the failed run.
	if reports.runLogCalls != 1 {
		t.Errorf("expected run log written despite csv failure, got %d calls", reports.runLogCalls)
	}
}

func TestRunOnceExcludesPreviouslySelected(t *testing.T) {
	t.Parallel()

	reports := &memoryReports{}
	history := &stubHistory{seen: map[string]bool{
		"https://aws.amazon.com/blogs/security/guardduty-runtime/": true,
	}}

	pipeline := NewPipeline(Deps{
		Fetchers: []ports.Fetcher{&stubFetcher{name: "AWS Security Blog", records: awsRecords()}},
		History:  history,
		Reports:  reports,
	}, testParams())

	result := pipeline.RunOnce(context.Background(), testNow)

	if result.Metrics.SelectedCount != 1 {
		t.Fatalf("expected 1 selected after history exclusion, got %d", result.Metrics.SelectedCount)
	}
	if reports.candidates[0].Title != "IAM policy security simplification" {
		t.Errorf("expected the unseen article to survive, got %q", reports.candidates[0].Title)
	}
	// Exclusion happens after dedup counting.
	if result.Metrics.DedupedCount != 2 {
		t.Errorf("expected deduped count 2, got %d", result.Metrics.DedupedCount)
	}
}

func TestRunOnceHistoryLookupFailureContinues(t *testing.T) {
	t.Parallel()

	reports := &memoryReports{}
	history := &stubHistory{lookupErr: errors.New("connection refused")}

	pipeline := NewPipeline(Deps{
		Fetchers: []ports.Fetcher{&stubFetcher{name: "AWS Security Blog", records: awsRecords()}},
		History:  history,
		Reports:  reports,
	}, testParams())

	result := pipeline.RunOnce(context.Background(), testNow)

	if !result.Success {
		t.Fatal("expected run to continue past a history lookup failure")
	}
	if result.Metrics.SelectedCount != 2 {
		t.Errorf("expected the batch to pass unfiltered, got %d selected", result.Metrics.SelectedCount)
	}

	found := false
	for _, msg := range result.Metrics.Errors {
		if strings.Contains(msg, "failed to check selection history") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected history error in run log, got %v", result.Metrics.Errors)
	}
}

func TestRunOnceUploadFailure(t *testing.T) {
	t.Parallel()

	reports := &memoryReports{}
	uploader := &stubUploader{err: errors.New("status 500")}

	pipeline := NewPipeline(Deps{
		Fetchers: []ports.Fetcher{&stubFetcher{name: "AWS Security Blog", records: awsRecords()}},
		Reports:  reports,
		Uploader: uploader,
	}, testParams())

	result := pipeline.RunOnce(context.Background(), testNow)

	if !result.Success {
		t.Fatal("expected success; an upload failure does not fail the run")
	}
	if result.Metrics.UploadStatus != domain.UploadFailed {
		t.Errorf("expected upload status failed, got %q", result.Metrics.UploadStatus)
	}
	if result.Metrics.UploadedFileID != "" {
		t.Errorf("expected no file id, got %q", result.Metrics.UploadedFileID)
	}

	found := false
	for _, msg := range result.Metrics.Errors {
		if strings.Contains(msg, "failed to upload") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected upload error in run log, got %v", result.Metrics.Errors)
	}
}

func TestRunOnceEmptyRun(t *testing.T) {
	t.Parallel()

	reports := &memoryReports{}

	pipeline := NewPipeline(Deps{
		Fetchers: []ports.Fetcher{&stubFetcher{name: "AWS Security Blog"}},
		Reports:  reports,
	}, testParams())

	result := pipeline.RunOnce(context.Background(), testNow)

	if result.Success {
		t.Fatal("expected failure when nothing was selected")
	}
	if result.CSVPath == "" {
		t.Error("expected a header-only csv even with no candidates")
	}

	metrics := result.Metrics
	if metrics.NormalizedCount != 0 || metrics.DedupedCount != 0 || metrics.SelectedCount != 0 {
		t.Errorf("expected zero counts, got %+v", metrics)
	}
	if metrics.AverageOverall != 0 {
		t.Errorf("expected zero average, got %f", metrics.AverageOverall)
	}
	if len(metrics.TopTopics) != 0 {
		t.Errorf("expected no topics, got %v", metrics.TopTopics)
	}
	if metrics.UploadStatus != domain.UploadSkipped {
		t.Errorf("expected upload skipped, got %q", metrics.UploadStatus)
	}
}

func TestRunOncePostDraftFailureDoesNotFailRun(t *testing.T) {
	t.Parallel()

	reports := &memoryReports{}

	pipeline := NewPipeline(Deps{
		Fetchers: []ports.Fetcher{&stubFetcher{name: "AWS Security Blog", records: awsRecords()}},
		Reports:  reports,
		Posts:    &stubPosts{err: errors.New("model unavailable")},
	}, testParams())

	result := pipeline.RunOnce(context.Background(), testNow)

	if !result.Success {
		t.Fatal("expected success; draft failures cost only the posts")
	}
	if len(reports.posts) != 0 {
		t.Errorf("expected no post drafts, got %d", len(reports.posts))
	}
	if len(result.Metrics.Errors) != 0 {
		t.Errorf("expected draft failures to stay out of the run log, got %v", result.Metrics.Errors)
	}
}

func TestTopTopics(t *testing.T) {
	t.Parallel()

	candidates := []domain.Candidate{
		{KeyTopics: []string{"cloud_security", "devsecops"}},
		{KeyTopics: []string{"cloud_security", "data_protection"}},
		{KeyTopics: []string{"devsecops", "cloud_security"}},
	}

	got := topTopics(candidates)
	want := []string{"cloud_security", "devsecops", "data_protection"}
	if len(got) != len(want) {
		t.Fatalf("expected %d topics, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTopTopicsTiesKeepFirstSeenOrder(t *testing.T) {
	t.Parallel()

	candidates := []domain.Candidate{
		{KeyTopics: []string{"identity_and_access", "auditing_and_retention"}},
	}

	got := topTopics(candidates)
	want := []string{"identity_and_access", "auditing_and_retention"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected tie order %v, got %v", want, got)
		}
	}
}

func TestAverageOverall(t *testing.T) {
	t.Parallel()

	if got := averageOverall(nil); got != 0 {
		t.Errorf("expected 0 for empty batch, got %f", got)
	}

	candidates := []domain.Candidate{
		{ScoreOverall: 80},
		{ScoreOverall: 90},
	}
	if got := averageOverall(candidates); got != 85 {
		t.Errorf("expected 85, got %f", got)
	}
}
