package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

const positionTTL = 10 * time.Minute

// PositionCache keeps the most recent progress update per run in Redis so
// dashboards can read a live position without touching MongoDB.
// Key format: lastfix:<run_id>
type PositionCache struct {
	client *redis.Client
}

// NewPositionCache creates a PositionCache wrapping the given Redis client.
func NewPositionCache(client *redis.Client) *PositionCache {
	return &PositionCache{client: client}
}

// Set stores update as the run's live position (expires after positionTTL).
func (c *PositionCache) Set(ctx context.Context, runID string, update *domain.ProgressUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("position cache: marshal: %w", err)
	}
	return c.client.Set(ctx, c.key(runID), data, positionTTL).Err()
}

// Get returns the run's cached progress update, or (nil, nil) on a miss.
func (c *PositionCache) Get(ctx context.Context, runID string) (*domain.ProgressUpdate, error) {
	data, err := c.client.Get(ctx, c.key(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("position cache: %w", err)
	}

	var update domain.ProgressUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return nil, fmt.Errorf("position cache: unmarshal: %w", err)
	}
	return &update, nil
}

func (c *PositionCache) key(runID string) string {
	return "lastfix:" + runID
}
