package progress

import "github.com/schoolrun/bus-tracking/internal/core/domain"

// ApproachingAlert returns an "Approaching <stop>" message when a next stop
// exists and the bus is within thresholdM meters of it, nil otherwise.
func ApproachingAlert(distanceToNextM float64, next *domain.Stop, thresholdM float64) *string {
	if next == nil || distanceToNextM > thresholdM {
		return nil
	}
	msg := "Approaching " + next.Name
	return &msg
}
