package ports

import (
	"context"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

// DriverRepository defines the interface for driver account persistence.
type DriverRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Driver, error)
	FindByID(ctx context.Context, id string) (*domain.Driver, error)
}
