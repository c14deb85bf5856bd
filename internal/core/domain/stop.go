package domain

// Stop is a waypoint on a run's route. Stops are immutable during a run and
// ordered ascending by Sequence; equal sequences keep insertion order.
type Stop struct {
	ID           string  `json:"id" bson:"_id,omitempty"`
	RunID        string  `json:"run_id" bson:"run_id"`
	Name         string  `json:"name" bson:"name"`
	Sequence     int     `json:"sequence" bson:"sequence"`
	Latitude     float64 `json:"latitude" bson:"latitude"`
	Longitude    float64 `json:"longitude" bson:"longitude"`
	ETAOffsetMin int     `json:"eta_offset_min" bson:"eta_offset_min"`
}
