package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

const collectionStops = "stops"

type stopDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	RunID        string             `bson:"run_id"`
	Name         string             `bson:"name"`
	Sequence     int                `bson:"sequence"`
	Latitude     float64            `bson:"latitude"`
	Longitude    float64            `bson:"longitude"`
	ETAOffsetMin int                `bson:"eta_offset_min"`
}

type StopRepository struct {
	col *mongo.Collection
}

func NewStopRepository(db *mongo.Database) *StopRepository {
	return &StopRepository{col: db.Collection(collectionStops)}
}

// ListByRun returns the run's stops ordered ascending by sequence. The _id
// tiebreaker keeps equal sequences in insertion order, which the nearest-stop
// scan relies on.
func (r *StopRepository) ListByRun(ctx context.Context, runID string) ([]domain.Stop, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"run_id": runID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var stops []domain.Stop
	for cur.Next(ctx) {
		var doc stopDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		stops = append(stops, domain.Stop{
			ID:           doc.ID.Hex(),
			RunID:        doc.RunID,
			Name:         doc.Name,
			Sequence:     doc.Sequence,
			Latitude:     doc.Latitude,
			Longitude:    doc.Longitude,
			ETAOffsetMin: doc.ETAOffsetMin,
		})
	}
	return stops, cur.Err()
}

// EnsureIndexes creates necessary indexes on the stops collection.
func (r *StopRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "run_id", Value: 1}, {Key: "sequence", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
