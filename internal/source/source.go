package source

import (
	"context"
	"fmt"

	"ContentAgent/internal/domain"
)

// Request carries all parameters required to fetch one configured source.
type Request struct {
	SourceName string
	Limit      int
	FeedURL    string
	PageURL    string
	Options    map[string]string
}

// Strategy captures a single fetch implementation (RSS feed, HTML page, file).
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.RawRecord, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("strategy %s is not registered", name)
}
