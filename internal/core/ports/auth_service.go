package ports

import (
	"context"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.Driver, error)
}
