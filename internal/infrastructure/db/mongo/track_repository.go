package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/ports"
)

const collectionTrackPoints = "track_points"

// TrackRepository implements ports.TrackRepository using MongoDB.
type TrackRepository struct {
	col *mongo.Collection
}

func NewTrackRepository(db *mongo.Database) ports.TrackRepository {
	return &TrackRepository{col: db.Collection(collectionTrackPoints)}
}

// InsertPoint persists one accepted fix to the track_points audit collection.
func (r *TrackRepository) InsertPoint(ctx context.Context, point *domain.TrackPoint) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"run_id":      point.RunID,
		"driver_id":   point.DriverID,
		"latitude":    point.Latitude,
		"longitude":   point.Longitude,
		"recorded_at": point.RecordedAt.UTC(),
		"stored_at":   time.Now().UTC(),
	}
	if point.SpeedKmh != nil {
		doc["speed_kmh"] = *point.SpeedKmh
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
