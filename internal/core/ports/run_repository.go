package ports

import (
	"context"
	"time"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

// RunRepository defines persistence operations for runs.
type RunRepository interface {
	// FindByID retrieves a run by id. Returns domain.ErrRunNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.Run, error)

	// UpdatePosition atomically sets the run's last-known position and
	// last-updated timestamp. Nothing else on the row is touched.
	UpdatePosition(ctx context.Context, id string, lat, lon float64, ts time.Time) error

	// UpdateStatus sets the run's status and lifecycle timestamps. A nil
	// startedAt/endedAt clears the corresponding field.
	UpdateStatus(ctx context.Context, id string, status domain.RunStatus, startedAt, endedAt *time.Time) error
}

// StopRepository supplies a run's route plan.
type StopRepository interface {
	// ListByRun returns the run's stops ordered ascending by sequence,
	// ties broken by insertion order.
	ListByRun(ctx context.Context, runID string) ([]domain.Stop, error)
}
