package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/geo"
	"github.com/schoolrun/bus-tracking/internal/core/ports"
	"github.com/schoolrun/bus-tracking/internal/core/progress"
)

type trackerService struct {
	runs            ports.RunRepository
	stops           ports.StopRepository
	cache           ports.LastFixCache
	recorder        ports.TrackRecorder
	defaultSpeedKmh float64
	alertThresholdM float64
	log             zerolog.Logger
}

// NewTrackerService returns a TrackerService implementation. cache and
// recorder may be nil; both are best-effort sinks.
func NewTrackerService(
	runs ports.RunRepository,
	stops ports.StopRepository,
	cache ports.LastFixCache,
	recorder ports.TrackRecorder,
	defaultSpeedKmh float64,
	alertThresholdM float64,
	log zerolog.Logger,
) ports.TrackerService {
	return &trackerService{
		runs:            runs,
		stops:           stops,
		cache:           cache,
		recorder:        recorder,
		defaultSpeedKmh: defaultSpeedKmh,
		alertThresholdM: alertThresholdM,
		log:             log,
	}
}

// ProcessFix runs the full pipeline for one accepted fix. The run is fetched
// fresh on every call so out-of-band start/finish transitions take effect on
// the very next fix.
func (s *trackerService) ProcessFix(ctx context.Context, runID, driverID string, fix ports.FixInput) (*domain.ProgressUpdate, error) {
	// 1. Authoritative run lookup and status gate.
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("process fix: %w", err)
	}
	if run.Status != domain.StatusActive {
		return nil, fmt.Errorf("process fix: %w", domain.ErrRunNotActive)
	}

	// 2. Route plan, ordered by sequence. Re-read per fix; the list is
	// effectively static during a run but this keeps the session stateless.
	stops, err := s.stops.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("process fix: load stops: %w", err)
	}

	// 3. Derive progress from the fix.
	nearest, distToCurrent, index := progress.NearestStop(fix.Latitude, fix.Longitude, stops)
	next := progress.NextStop(index, stops)
	distToNext := 0.0
	if next != nil {
		distToNext = geo.DistanceMeters(fix.Latitude, fix.Longitude, next.Latitude, next.Longitude)
	}

	percentIndex := index
	if percentIndex < 0 {
		percentIndex = 0
	}
	percent := progress.RoutePercent(percentIndex, len(stops), distToCurrent)
	eta := progress.ETAMinutes(distToNext, fix.SpeedKmh, s.defaultSpeedKmh)
	alert := progress.ApproachingAlert(distToNext, next, s.alertThresholdM)

	// 4. Persist the last-known position. A failure here aborts the fix:
	// no update is returned and nothing is broadcast.
	now := time.Now().UTC()
	if err := s.runs.UpdatePosition(ctx, runID, fix.Latitude, fix.Longitude, now); err != nil {
		return nil, fmt.Errorf("process fix: persist position: %w", err)
	}

	update := &domain.ProgressUpdate{
		RunID:           runID,
		Timestamp:       now,
		Latitude:        fix.Latitude,
		Longitude:       fix.Longitude,
		CurrentStop:     stopName(nearest),
		NextStop:        stopName(next),
		ProgressPercent: domain.Round2(percent),
		ETAMinutes:      eta,
		DistanceToNextM: domain.Round2(distToNext),
		Alert:           alert,
	}

	// 5. Refresh the live-position cache (non-fatal).
	if s.cache != nil {
		if err := s.cache.Set(ctx, runID, update); err != nil {
			s.log.Warn().Err(err).Str("run_id", runID).Msg("failed to cache last fix")
		}
	}

	// 6. Queue the fix for the audit trail (asynchronous, non-fatal).
	if s.recorder != nil {
		s.recorder.Record(domain.TrackPoint{
			RunID:      runID,
			DriverID:   driverID,
			Latitude:   fix.Latitude,
			Longitude:  fix.Longitude,
			SpeedKmh:   fix.SpeedKmh,
			RecordedAt: now,
		})
	}

	s.log.Debug().
		Str("run_id", runID).
		Float64("progress_percent", update.ProgressPercent).
		Int("eta_minutes", eta).
		Msg("fix processed")

	return update, nil
}

func stopName(s *domain.Stop) *string {
	if s == nil {
		return nil
	}
	name := s.Name
	return &name
}
