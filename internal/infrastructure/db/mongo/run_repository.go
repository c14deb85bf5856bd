package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

const collectionRuns = "runs"

// runDoc is the persistence shape of a run; the repository owns the mapping
// between ObjectID documents and the string-keyed domain type.
type runDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	RouteID       string             `bson:"route_id"`
	DriverID      string             `bson:"driver_id"`
	Status        string             `bson:"status"`
	StartedAt     *time.Time         `bson:"started_at,omitempty"`
	EndedAt       *time.Time         `bson:"ended_at,omitempty"`
	LastLatitude  *float64           `bson:"last_latitude,omitempty"`
	LastLongitude *float64           `bson:"last_longitude,omitempty"`
	LastUpdated   *time.Time         `bson:"last_updated,omitempty"`
}

func (d *runDoc) toDomain() *domain.Run {
	return &domain.Run{
		ID:            d.ID.Hex(),
		RouteID:       d.RouteID,
		DriverID:      d.DriverID,
		Status:        domain.RunStatus(d.Status),
		StartedAt:     d.StartedAt,
		EndedAt:       d.EndedAt,
		LastLatitude:  d.LastLatitude,
		LastLongitude: d.LastLongitude,
		LastUpdated:   d.LastUpdated,
	}
}

type RunRepository struct {
	col *mongo.Collection
}

func NewRunRepository(db *mongo.Database) *RunRepository {
	return &RunRepository{col: db.Collection(collectionRuns)}
}

// FindByID retrieves a run by its hex object id.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*domain.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRunNotFound
	}

	var doc runDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// UpdatePosition commits the last-known position as a single atomic document
// update; no other run fields are touched.
func (r *RunRepository) UpdatePosition(ctx context.Context, id string, lat, lon float64, ts time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRunNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"last_latitude":  lat,
			"last_longitude": lon,
			"last_updated":   ts.UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

// UpdateStatus sets the run's status and lifecycle timestamps. Nil timestamps
// clear the corresponding fields.
func (r *RunRepository) UpdateStatus(ctx context.Context, id string, status domain.RunStatus, startedAt, endedAt *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRunNotFound
	}

	set := bson.M{"status": string(status)}
	unset := bson.M{}
	if startedAt != nil {
		set["started_at"] = startedAt.UTC()
	} else {
		unset["started_at"] = ""
	}
	if endedAt != nil {
		set["ended_at"] = endedAt.UTC()
	} else {
		unset["ended_at"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the runs collection.
func (r *RunRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "driver_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
