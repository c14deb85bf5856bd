package ports

import (
	"context"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

// FixInput is the DTO passed from the transport layer to TrackerService.
// Coordinates are already syntax-checked by the session; speed is optional.
type FixInput struct {
	Latitude  float64
	Longitude float64
	SpeedKmh  *float64
}

// TrackerService processes one accepted position fix for a run: authoritative
// run/status check, progress computation, position persistence. The returned
// update is ready to broadcast.
type TrackerService interface {
	ProcessFix(ctx context.Context, runID, driverID string, fix FixInput) (*domain.ProgressUpdate, error)
}

// LastFixCache caches the most recent progress update per run so dashboards
// can read the live position without touching the primary store.
type LastFixCache interface {
	Set(ctx context.Context, runID string, update *domain.ProgressUpdate) error
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, runID string) (*domain.ProgressUpdate, error)
}

// TrackRecorder accepts accepted fixes for asynchronous audit persistence.
// Record must not block the tracking loop.
type TrackRecorder interface {
	Record(point domain.TrackPoint)
}

// TrackRepository persists track points to the audit trail.
type TrackRepository interface {
	InsertPoint(ctx context.Context, point *domain.TrackPoint) error
}
