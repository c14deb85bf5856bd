package domain

import (
	"math"
	"time"
)

// PositionFix is a single GPS sample reported by a driver's device.
// It is transient; only the latest accepted fix survives, on the run row.
type PositionFix struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	SpeedKmh  *float64   `json:"speed_kmh,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ProgressUpdate is the derived record broadcast to every observer of a run
// after a fix is accepted. It is produced fresh per fix and never persisted.
type ProgressUpdate struct {
	RunID           string    `json:"run_id"`
	Timestamp       time.Time `json:"timestamp"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	CurrentStop     *string   `json:"current_stop"`
	NextStop        *string   `json:"next_stop"`
	ProgressPercent float64   `json:"progress_percent"`
	ETAMinutes      int       `json:"eta_minutes"`
	DistanceToNextM float64   `json:"distance_to_next_m"`
	Alert           *string   `json:"alert"`
}

// TrackPoint is one accepted fix written to the track_points audit trail.
type TrackPoint struct {
	RunID      string    `json:"run_id" bson:"run_id"`
	DriverID   string    `json:"driver_id" bson:"driver_id"`
	Latitude   float64   `json:"latitude" bson:"latitude"`
	Longitude  float64   `json:"longitude" bson:"longitude"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty" bson:"speed_kmh,omitempty"`
	RecordedAt time.Time `json:"recorded_at" bson:"recorded_at"`
}

// Round2 rounds to two decimals, the precision used on the wire for
// progress_percent and distance_to_next_m.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
