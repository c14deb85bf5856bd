// Package progress derives route progress from a position fix and the run's
// ordered stop list: nearest stop, next stop, percent complete and ETA.
package progress

import (
	"math"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/geo"
)

// proximityBonusRangeM is the distance band over which the proximity bonus
// ramps from 0 to proximityBonusMax percentage points.
const (
	proximityBonusRangeM = 200.0
	proximityBonusMax    = 5.0
)

// NearestStop scans the ordered stop list and returns the stop closest to the
// given position, its distance in meters and its index. Ties resolve to the
// lowest index. An empty list yields (nil, +Inf, -1).
func NearestStop(lat, lon float64, stops []domain.Stop) (*domain.Stop, float64, int) {
	if len(stops) == 0 {
		return nil, math.Inf(1), -1
	}

	var best *domain.Stop
	bestDist := math.Inf(1)
	bestIndex := -1

	for i := range stops {
		d := geo.DistanceMeters(lat, lon, stops[i].Latitude, stops[i].Longitude)
		if d < bestDist {
			best = &stops[i]
			bestDist = d
			bestIndex = i
		}
	}
	return best, bestDist, bestIndex
}

// NextStop returns the stop immediately after index, or nil when index is
// invalid or already the last stop.
func NextStop(index int, stops []domain.Stop) *domain.Stop {
	if index < 0 || index >= len(stops)-1 {
		return nil
	}
	return &stops[index+1]
}

// RoutePercent converts the current stop index into a percent-complete value.
// A single-stop route is always 100. Closing in on the current stop adds a
// bonus of up to 5 points as the distance shrinks below 200 m, so the value
// keeps moving between stops. Clamped to [0, 100].
func RoutePercent(currentIndex, totalStops int, distanceToCurrentM float64) float64 {
	if totalStops <= 0 {
		return 0
	}
	if totalStops == 1 {
		return 100
	}

	base := float64(currentIndex) / float64(totalStops-1) * 100
	bonus := clamp(0, proximityBonusMax, (1-distanceToCurrentM/proximityBonusRangeM)*proximityBonusMax)
	return clamp(0, 100, base+bonus)
}

// ETAMinutes estimates whole minutes to cover distanceM. The reported speed is
// used when present and positive, otherwise defaultSpeedKmh. Floored, never
// negative.
func ETAMinutes(distanceM float64, speedKmh *float64, defaultSpeedKmh float64) int {
	speed := defaultSpeedKmh
	if speedKmh != nil && *speedKmh > 0 {
		speed = *speedKmh
	}
	speedMps := speed * 1000 / 3600
	minutes := int(distanceM / speedMps / 60)
	if minutes < 0 {
		return 0
	}
	return minutes
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
