package usecase

import (
	"context"
	"log/slog"
	"time"

	"ContentAgent/internal/ports"
)

// Scheduler wires the daily trigger with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring run.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler. Each trigger
// instant becomes that run's reference time.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		result := s.pipeline.RunOnce(ctx, trigger)
		if !result.Success && s.logger != nil {
			s.logger.Warn("scheduled run did not produce a selection",
				"trigger", trigger, "errors", result.Metrics.Errors)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
