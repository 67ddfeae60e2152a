// Package scheduler triggers pipeline runs once per day at a configured
// wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"ContentAgent/internal/ports"
)

// Daily fires a job every day at a fixed HH:MM in the configured location.
type Daily struct {
	at   string
	loc  *time.Location
	stop chan struct{}
}

var _ ports.Scheduler = (*Daily)(nil)

// NewDaily builds a scheduler from an "HH:MM" trigger time and location.
func NewDaily(at string, loc *time.Location) *Daily {
	if loc == nil {
		loc = time.UTC
	}
	return &Daily{at: at, loc: loc}
}

// Start launches the trigger goroutine. Starting an already running
// scheduler is a no-op.
func (d *Daily) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if d.stop != nil {
		return nil
	}

	at, err := time.Parse("15:04", d.at)
	if err != nil {
		return fmt.Errorf("parse schedule time %q: %w", d.at, err)
	}

	d.stop = make(chan struct{})
	go d.run(ctx, job, at.Hour(), at.Minute())
	return nil
}

func (d *Daily) run(ctx context.Context, job func(time.Time), hour, minute int) {
	for {
		next := nextTrigger(time.Now().In(d.loc), hour, minute)
		timer := time.NewTimer(time.Until(next))

		select {
		case t := <-timer.C:
			job(t)
		case <-ctx.Done():
			timer.Stop()
			return
		case <-d.stop:
			timer.Stop()
			return
		}
	}
}

// Stop halts the trigger goroutine.
func (d *Daily) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}

// nextTrigger returns the next hour:minute instant strictly after now.
func nextTrigger(now time.Time, hour, minute int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
