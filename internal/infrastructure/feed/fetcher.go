package feed

import (
	"context"
	"fmt"
	"log/slog"

	"ContentAgent/internal/config"
	"ContentAgent/internal/domain"
	"ContentAgent/internal/ports"
	"ContentAgent/internal/source"
)

// StrategyFetcher adapts one configured source to the Fetcher port through a
// registered strategy.
type StrategyFetcher struct {
	registry *source.Registry
	cfg      config.SourceConfig
	logger   *slog.Logger
}

var _ ports.Fetcher = (*StrategyFetcher)(nil)

// NewStrategyFetcher binds a source configuration to the strategy registry.
func NewStrategyFetcher(reg *source.Registry, cfg config.SourceConfig, logger *slog.Logger) *StrategyFetcher {
	return &StrategyFetcher{
		registry: reg,
		cfg:      cfg,
		logger:   logger,
	}
}

// SourceName returns the configured source identifier.
func (f *StrategyFetcher) SourceName() string {
	return f.cfg.Name
}

// Fetch resolves the strategy and executes it, backfilling the source name
// on records the strategy left blank.
func (f *StrategyFetcher) Fetch(ctx context.Context, limit int) ([]domain.RawRecord, error) {
	if f.registry == nil {
		return nil, fmt.Errorf("strategy registry is not configured")
	}

	strategy, err := f.registry.Resolve(f.cfg.Fetcher)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", f.cfg.Name, err)
	}

	req := source.Request{
		SourceName: f.cfg.Name,
		Limit:      limit,
		FeedURL:    f.cfg.FeedURL,
		PageURL:    f.cfg.PageURL,
		Options:    f.cfg.Options,
	}

	records, err := strategy.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", f.cfg.Name, err)
	}

	for i := range records {
		if records[i].Source == "" {
			records[i].Source = f.cfg.Name
		}
	}

	f.debug("source produced records", "source", f.cfg.Name, "count", len(records))
	return records, nil
}

func (f *StrategyFetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
