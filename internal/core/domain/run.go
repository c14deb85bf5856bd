package domain

import (
	"errors"
	"time"
)

// RunStatus represents the lifecycle state of a bus run.
type RunStatus string

const (
	StatusScheduled RunStatus = "scheduled"
	StatusActive    RunStatus = "active"
	StatusCompleted RunStatus = "completed"
)

var ErrRunNotFound = errors.New("run not found")
var ErrRunNotActive = errors.New("run is not active")
var ErrNoPosition = errors.New("no position recorded")
var ErrDriverNotFound = errors.New("driver not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

// Run is one scheduled execution of a route by a driver. The tracking
// session writes only the last-known position fields; status transitions
// happen through the run lifecycle endpoints.
type Run struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	RouteID       string     `json:"route_id" bson:"route_id"`
	DriverID      string     `json:"driver_id" bson:"driver_id"`
	Status        RunStatus  `json:"status" bson:"status"`
	StartedAt     *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
	LastLatitude  *float64   `json:"last_latitude,omitempty" bson:"last_latitude,omitempty"`
	LastLongitude *float64   `json:"last_longitude,omitempty" bson:"last_longitude,omitempty"`
	LastUpdated   *time.Time `json:"last_updated,omitempty" bson:"last_updated,omitempty"`
}
