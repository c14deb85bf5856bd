package ports

import (
	"context"
	"time"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

// RunPosition is the live-position view returned by LastPosition. Source is
// "live" when served from the cache and "store" when rebuilt from the run row.
type RunPosition struct {
	RunID     string    `json:"run_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// RunService defines run lifecycle use-cases. Start and Finish enforce that
// the caller is the run's assigned driver.
type RunService interface {
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	StartRun(ctx context.Context, runID, driverID string) (*domain.Run, error)
	FinishRun(ctx context.Context, runID, driverID string) (*domain.Run, error)
	LastPosition(ctx context.Context, runID string) (*RunPosition, error)
}
