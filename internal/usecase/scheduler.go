package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"newsbrief/internal/ports"
)

// Scheduler wires the interval driver with the discovery pipeline for
// unattended weekly runs.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring discovery jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler. Precondition
// failures are expected between busy weeks and logged at info level.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		_, err := s.pipeline.Run(ctx, "")
		switch {
		case err == nil:
		case errors.Is(err, ErrNoRecentCandidates), errors.Is(err, ErrInsufficientQuality):
			if s.logger != nil {
				s.logger.Info("scheduled run produced no draft", "trigger", trigger, "reason", err)
			}
		default:
			if s.logger != nil {
				s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			}
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
