package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"ContentAgent/internal/domain"
	"ContentAgent/internal/source"
)

// FileScanner loads raw records from a local JSON file, for dry runs and
// environments without network access. The path comes from the source's
// options.
type FileScanner struct{}

var _ source.Strategy = (*FileScanner)(nil)

// NewFileScanner builds the "file" strategy.
func NewFileScanner() *FileScanner {
	return &FileScanner{}
}

// Name identifies the strategy inside the registry.
func (f *FileScanner) Name() string {
	return "file"
}

// Fetch reads a JSON array of raw records from options.path.
func (f *FileScanner) Fetch(_ context.Context, req source.Request) ([]domain.RawRecord, error) {
	path := req.Options["path"]
	if path == "" {
		return nil, fmt.Errorf("file source %s: options.path is required", req.SourceName)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []domain.RawRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}
	return records, nil
}
