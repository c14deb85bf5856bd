package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/ports"
)

type runService struct {
	runs   ports.RunRepository
	cache  ports.LastFixCache
	logger zerolog.Logger
}

// NewRunService returns a RunService implementation. cache may be nil; the
// live-position endpoint then always falls back to the run row.
func NewRunService(runs ports.RunRepository, cache ports.LastFixCache, logger zerolog.Logger) ports.RunService {
	return &runService{runs: runs, cache: cache, logger: logger}
}

func (s *runService) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return s.runs.FindByID(ctx, id)
}

// StartRun activates the run. started_at is set only on the first start so a
// restarted run keeps its original departure time; ended_at is cleared.
func (s *runService) StartRun(ctx context.Context, runID, driverID string) (*domain.Run, error) {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.DriverID != driverID {
		return nil, domain.ErrForbidden
	}

	startedAt := run.StartedAt
	if startedAt == nil {
		now := time.Now().UTC()
		startedAt = &now
	}
	if err := s.runs.UpdateStatus(ctx, runID, domain.StatusActive, startedAt, nil); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	s.logger.Info().Str("run_id", runID).Str("driver_id", driverID).Msg("run started")

	run.Status = domain.StatusActive
	run.StartedAt = startedAt
	run.EndedAt = nil
	return run, nil
}

func (s *runService) FinishRun(ctx context.Context, runID, driverID string) (*domain.Run, error) {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.DriverID != driverID {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	if err := s.runs.UpdateStatus(ctx, runID, domain.StatusCompleted, run.StartedAt, &now); err != nil {
		return nil, fmt.Errorf("finish run: %w", err)
	}

	s.logger.Info().Str("run_id", runID).Str("driver_id", driverID).Msg("run finished")

	run.Status = domain.StatusCompleted
	run.EndedAt = &now
	return run, nil
}

// LastPosition serves the run's most recent position, preferring the live
// cache over the persisted run row.
func (s *runService) LastPosition(ctx context.Context, runID string) (*ports.RunPosition, error) {
	if s.cache != nil {
		update, err := s.cache.Get(ctx, runID)
		if err != nil {
			s.logger.Warn().Err(err).Str("run_id", runID).Msg("last-fix cache read failed")
		} else if update != nil {
			return &ports.RunPosition{
				RunID:     runID,
				Latitude:  update.Latitude,
				Longitude: update.Longitude,
				Timestamp: update.Timestamp,
				Source:    "live",
			}, nil
		}
	}

	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.LastLatitude == nil || run.LastLongitude == nil || run.LastUpdated == nil {
		return nil, domain.ErrNoPosition
	}
	return &ports.RunPosition{
		RunID:     runID,
		Latitude:  *run.LastLatitude,
		Longitude: *run.LastLongitude,
		Timestamp: *run.LastUpdated,
		Source:    "store",
	}, nil
}
