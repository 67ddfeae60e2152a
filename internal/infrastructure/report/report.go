// Package report writes the run artifacts: the candidate CSV, the JSON run
// log, and the drafted posts CSV. Every file carries the run timestamp in
// its name so one run's artifacts sort together.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ContentAgent/internal/domain"
	"ContentAgent/internal/ports"
)

const stampLayout = "20060102_150405"

// csvColumns is the candidate report schema; column order is part of the
// contract.
var csvColumns = []string{
	"source", "title", "url", "published_date", "author", "summary",
	"key_topics", "why_it_matters", "suggested_linkedin_angle",
	"suggested_hashtags", "score_overall", "score_recency",
	"score_relevance", "collected_at",
}

var postColumns = []string{"title", "url", "post"}

// Writer persists run artifacts under a single output directory, creating
// it on demand.
type Writer struct {
	outputDir string
	logger    *slog.Logger
}

var _ ports.ReportWriter = (*Writer)(nil)

// NewWriter builds a writer rooted at outputDir.
func NewWriter(outputDir string, logger *slog.Logger) *Writer {
	return &Writer{outputDir: outputDir, logger: logger}
}

// WriteCandidates writes one UTF-8 CSV row per candidate and returns the
// file path. Multi-value fields are joined with ";", timestamps are
// ISO-8601, scores carry two decimals.
func (w *Writer) WriteCandidates(candidates []domain.Candidate, stamp time.Time) (string, error) {
	name := fmt.Sprintf("content_candidates_%s.csv", stamp.Format(stampLayout))
	return w.writeCSV(name, csvColumns, candidateRows(candidates))
}

// WritePosts writes the drafted posts CSV and returns the file path.
func (w *Writer) WritePosts(posts []domain.PostDraft, stamp time.Time) (string, error) {
	rows := make([][]string, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, []string{post.Title, post.URL, post.Text})
	}

	name := fmt.Sprintf("linkedin_posts_%s.csv", stamp.Format(stampLayout))
	return w.writeCSV(name, postColumns, rows)
}

// runLogPayload is the JSON run-log schema.
type runLogPayload struct {
	FetchedCountBySource map[string]int `json:"fetched_count_by_source"`
	NormalizedCount      int            `json:"normalized_count"`
	DedupedCount         int            `json:"deduped_count"`
	SelectedCount        int            `json:"selected_count"`
	TopTopics            []string       `json:"top_topics"`
	AverageScoreOverall  float64        `json:"average_score_overall"`
	UploadStatus         string         `json:"upload_status"`
	UploadedFileID       *string        `json:"uploaded_file_id"`
	Errors               []string       `json:"errors"`
	RunTimestamp         string         `json:"run_timestamp"`
}

// WriteRunLog serializes the metrics as indented JSON and returns the file
// path. An absent upload id serializes as null; empty collections stay
// empty instead of null.
func (w *Writer) WriteRunLog(metrics domain.RunMetrics, stamp time.Time) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	payload := runLogPayload{
		FetchedCountBySource: metrics.FetchedBySource,
		NormalizedCount:      metrics.NormalizedCount,
		DedupedCount:         metrics.DedupedCount,
		SelectedCount:        metrics.SelectedCount,
		TopTopics:            metrics.TopTopics,
		AverageScoreOverall:  metrics.AverageOverall,
		UploadStatus:         string(metrics.UploadStatus),
		Errors:               metrics.Errors,
		RunTimestamp:         metrics.RunTimestamp.Format(time.RFC3339),
	}
	if payload.FetchedCountBySource == nil {
		payload.FetchedCountBySource = map[string]int{}
	}
	if payload.TopTopics == nil {
		payload.TopTopics = []string{}
	}
	if payload.Errors == nil {
		payload.Errors = []string{}
	}
	if metrics.UploadedFileID != "" {
		id := metrics.UploadedFileID
		payload.UploadedFileID = &id
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run log: %w", err)
	}

	path := filepath.Join(w.outputDir, fmt.Sprintf("run_log_%s.json", stamp.Format(stampLayout)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	w.debug("run log written", "path", path)
	return path, nil
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	w.debug("csv written", "path", path, "rows", len(rows))
	return path, nil
}

func candidateRows(candidates []domain.Candidate) [][]string {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		published := ""
		if !c.PublishedAt.IsZero() {
			published = c.PublishedAt.Format(time.RFC3339)
		}

		rows = append(rows, []string{
			c.Source,
			c.Title,
			c.CanonicalURL,
			published,
			c.Author,
			c.Summary,
			strings.Join(c.KeyTopics, ";"),
			c.WhyItMatters,
			c.LinkedinAngle,
			strings.Join(c.Hashtags, ";"),
			formatScore(c.ScoreOverall),
			formatScore(c.ScoreRecency),
			formatScore(c.ScoreRelevance),
			c.CollectedAt.Format(time.RFC3339),
		})
	}
	return rows
}

func formatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func (w *Writer) debug(msg string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
