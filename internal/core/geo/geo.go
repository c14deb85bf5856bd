// Package geo provides the geodesy primitives used by the tracking pipeline:
// coordinate validation and great-circle distance.
package geo

import "math"

// earthRadiusM is the mean spherical Earth radius used by the haversine formula.
const earthRadiusM = 6_371_000.0

// ValidateCoordinates reports whether lat/lon fall inside the WGS84 box:
// latitude in [-90, 90] and longitude in [-180, 180], boundaries included.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceMeters returns the great-circle distance between two points via the
// haversine formula. Symmetric, zero for identical points, never negative.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
