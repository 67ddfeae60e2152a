package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"ContentAgent/internal/dedup"
	"ContentAgent/internal/domain"
	"ContentAgent/internal/enrich"
	"ContentAgent/internal/filter"
	"ContentAgent/internal/normalize"
	"ContentAgent/internal/ports"
	"ContentAgent/internal/score"
	"ContentAgent/internal/selection"
	"ContentAgent/pkg/fn"
)

// Deps wires the collaborators the pipeline drives. Fetchers and Reports
// carry the run; every other dependency is optional and skipped when nil.
type Deps struct {
	Fetchers []ports.Fetcher
	History  ports.HistoryRepository
	Reports  ports.ReportWriter
	Uploader ports.Uploader
	Posts    ports.PostWriter
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Params carries the validated curation settings applied to every run.
type Params struct {
	MaxPerSource      int
	TechnicalKeywords []string
	Scoring           score.Params
	TargetSelected    int
	MinThreshold      float64
}

// Pipeline orchestrates the curation workflow: fetch, normalize,
// deduplicate, filter, score, select, enrich, report.
type Pipeline struct {
	deps   Deps
	params Params
	logger *slog.Logger
}

// Result reports one run's outcome. Success means the CSV was written and
// at least one article was selected.
type Result struct {
	Success bool
	CSVPath string
	Metrics domain.RunMetrics
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps Deps, params Params) *Pipeline {
	return &Pipeline{deps: deps, params: params, logger: deps.Logger}
}

// RunOnce executes the whole pipeline against one reference instant. The
// instant stamps the run log and artifact filenames, fixes recency
// scoring, and becomes every candidate's collection time. Collaborator
// failures are folded into the run metrics instead of aborting the run.
func (p *Pipeline) RunOnce(ctx context.Context, now time.Time) Result {
	runID := uuid.NewString()
	p.info("pipeline starting", "run_id", runID)

	var errs []string

	raw, fetchedCounts, fetchErrs := p.fetchAll(ctx)
	errs = append(errs, fetchErrs...)
	p.info("stage complete", "stage", "fetched", "count", len(raw))

	normalized := normalize.Articles(raw)
	p.info("stage complete", "stage", "normalized", "count", len(normalized))

	dedupResult := dedup.Deduplicate(normalized)
	deduped := dedupResult.Articles
	p.info("stage complete", "stage", "deduped", "count", len(deduped),
		"removed_by_url", dedupResult.RemovedByURL,
		"removed_by_title", dedupResult.RemovedByTitle)

	technical := filter.Technical(deduped, p.params.TechnicalKeywords)
	if removed := len(deduped) - len(technical); removed > 0 {
		p.info("non-technical articles dropped", "count", removed)
	}

	fresh, histErr := p.excludeHistory(ctx, technical)
	if histErr != nil {
		errs = append(errs, histErr.Error())
	}

	scored := score.All(fresh, p.params.Scoring, now)
	selected := selection.Top(scored, p.params.TargetSelected, p.params.MinThreshold)
	p.info("stage complete", "stage", "selected", "count", len(selected))

	candidates := enrich.Candidates(selected, p.params.Scoring.Taxonomy, now)

	csvPath := p.writeCandidates(candidates, now, &errs)

	if p.deps.History != nil && csvPath != "" && len(candidates) > 0 {
		if err := p.deps.History.SaveSelected(ctx, runID, candidates); err != nil {
			errs = append(errs, fmt.Sprintf("failed to save selection history: %v", err))
			p.error("save selection history failed", "error", err)
		}
	}

	uploadStatus, uploadedID := p.upload(ctx, csvPath, &errs)

	p.draftPosts(ctx, candidates, now)

	metrics := domain.RunMetrics{
		FetchedBySource: fetchedCounts,
		NormalizedCount: len(normalized),
		DedupedCount:    len(deduped),
		SelectedCount:   len(candidates),
		TopTopics:       topTopics(candidates),
		AverageOverall:  averageOverall(candidates),
		UploadStatus:    uploadStatus,
		UploadedFileID:  uploadedID,
		Errors:          errs,
		RunTimestamp:    now,
	}

	if p.deps.Reports != nil {
		if _, err := p.deps.Reports.WriteRunLog(metrics, now); err != nil {
			// The metrics still exist in memory; a lost log file is not a
			// run failure.
			p.error("write run log failed", "error", err)
		}
	}

	success := csvPath != "" && len(candidates) > 0

	if p.deps.Notifier != nil && success {
		if err := p.deps.Notifier.PublishDigest(ctx, digestMessage(candidates, metrics, csvPath)); err != nil {
			p.error("publish digest failed", "error", err)
		}
	}

	p.info("pipeline finished", "run_id", runID, "success", success, "selected", len(candidates))

	return Result{Success: success, CSVPath: csvPath, Metrics: metrics}
}

// sourceResult pairs one source with its fetch outcome.
type sourceResult struct {
	name   string
	result fn.Result[[]domain.RawRecord]
}

// fetchAll runs every fetcher and folds the per-source results into
// (records, counts, errors). A failing source contributes zero records and
// one error string; it never aborts the others.
func (p *Pipeline) fetchAll(ctx context.Context) ([]domain.RawRecord, map[string]int, []string) {
	results := make([]sourceResult, 0, len(p.deps.Fetchers))
	for _, fetcher := range p.deps.Fetchers {
		name := fetcher.SourceName()
		p.info("fetching source", "source", name)
		results = append(results, sourceResult{
			name:   name,
			result: fn.FromPair(fetcher.Fetch(ctx, p.params.MaxPerSource)),
		})
	}

	var all []domain.RawRecord
	counts := make(map[string]int, len(results))
	var errs []string

	for _, sr := range results {
		records, err := sr.result.Unwrap()
		if err != nil {
			counts[sr.name] = 0
			errs = append(errs, fmt.Sprintf("failed to fetch from %s: %v", sr.name, err))
			p.error("fetch failed", "source", sr.name, "error", err)
			continue
		}

		counts[sr.name] = len(records)
		all = append(all, records...)
		p.info("source fetched", "source", sr.name, "count", len(records))
	}

	return all, counts, errs
}

// excludeHistory drops articles whose URL was selected by a previous run
// within the lookback window. A history failure costs only the exclusion:
// the batch continues unfiltered and the error lands in the run log.
func (p *Pipeline) excludeHistory(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	if p.deps.History == nil || len(articles) == 0 {
		return articles, nil
	}

	urls := make([]string, 0, len(articles))
	for _, article := range articles {
		urls = append(urls, article.CanonicalURL)
	}

	seen, err := p.deps.History.PreviouslySelected(ctx, urls)
	if err != nil {
		p.error("history lookup failed", "error", err)
		return articles, fmt.Errorf("failed to check selection history: %v", err)
	}

	kept := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if seen[article.CanonicalURL] {
			continue
		}
		kept = append(kept, article)
	}

	if removed := len(articles) - len(kept); removed > 0 {
		p.info("previously selected articles excluded", "count", removed)
	}
	return kept, nil
}

func (p *Pipeline) writeCandidates(candidates []domain.Candidate, now time.Time, errs *[]string) string {
	if p.deps.Reports == nil {
		return ""
	}

	path, err := p.deps.Reports.WriteCandidates(candidates, now)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("failed to write csv: %v", err))
		p.error("write csv failed", "error", err)
		return ""
	}

	p.info("csv written", "path", path)
	return path
}

// upload ships the CSV when an uploader is wired and the CSV exists;
// otherwise the status stays skipped.
func (p *Pipeline) upload(ctx context.Context, csvPath string, errs *[]string) (domain.UploadStatus, string) {
	if p.deps.Uploader == nil || csvPath == "" {
		return domain.UploadSkipped, ""
	}

	id, err := p.deps.Uploader.Upload(ctx, csvPath)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("failed to upload %s: %v", csvPath, err))
		p.error("upload failed", "path", csvPath, "error", err)
		return domain.UploadFailed, ""
	}

	p.info("report uploaded", "file_id", id)
	return domain.UploadSuccess, id
}

// draftPosts asks the generator for one post per candidate and writes the
// batch to the posts report. A draft failure costs only that article's
// post.
func (p *Pipeline) draftPosts(ctx context.Context, candidates []domain.Candidate, now time.Time) {
	if p.deps.Posts == nil || p.deps.Reports == nil || len(candidates) == 0 {
		return
	}

	drafts := make([]domain.PostDraft, 0, len(candidates))
	for _, candidate := range candidates {
		text, err := p.deps.Posts.Draft(ctx, candidate)
		if err != nil {
			p.error("draft post failed", "title", candidate.Title, "error", err)
			continue
		}
		drafts = append(drafts, domain.PostDraft{
			Title: candidate.Title,
			URL:   candidate.CanonicalURL,
			Text:  text,
		})
	}
	if len(drafts) == 0 {
		return
	}

	path, err := p.deps.Reports.WritePosts(drafts, now)
	if err != nil {
		p.error("write posts failed", "error", err)
		return
	}
	p.info("post drafts written", "path", path, "count", len(drafts))
}

// topTopics ranks topics by frequency across the selected candidates,
// most frequent first; equally frequent topics keep first-seen order.
func topTopics(candidates []domain.Candidate) []string {
	counts := make(map[string]int)
	var order []string

	for _, candidate := range candidates {
		for _, topic := range candidate.KeyTopics {
			if counts[topic] == 0 {
				order = append(order, topic)
			}
			counts[topic]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

// averageOverall is the mean overall score, 0 when nothing was selected.
func averageOverall(candidates []domain.Candidate) float64 {
	if len(candidates) == 0 {
		return 0
	}

	total := 0.0
	for _, candidate := range candidates {
		total += candidate.ScoreOverall
	}
	return total / float64(len(candidates))
}

// digestMessage formats the run summary posted to the notifier.
func digestMessage(candidates []domain.Candidate, metrics domain.RunMetrics, csvPath string) string {
	message := fmt.Sprintf("Curation run selected %d articles (average score %.1f)\nReport: %s\n\n",
		metrics.SelectedCount, metrics.AverageOverall, csvPath)

	for _, candidate := range candidates {
		message += fmt.Sprintf("- %s\nScore: %.2f\n%s\n\n",
			candidate.Title,
			candidate.ScoreOverall,
			candidate.CanonicalURL)
	}

	return message
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
