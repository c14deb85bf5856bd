package geo

import (
	"math"
	"testing"
)

func TestValidateCoordinates(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"north pole", 90, 0, true},
		{"south pole", -90, 0, true},
		{"date line east", 0, 180, true},
		{"date line west", 0, -180, true},
		{"lat too high", 90.0001, 0, false},
		{"lat too low", -90.0001, 0, false},
		{"lon too high", 0, 180.0001, false},
		{"lon too low", 0, -180.0001, false},
	}
	for _, tc := range cases {
		if got := ValidateCoordinates(tc.lat, tc.lon); got != tc.want {
			t.Errorf("%s: ValidateCoordinates(%v, %v) = %v, want %v", tc.name, tc.lat, tc.lon, got, tc.want)
		}
	}
}

func TestDistanceMeters_Identity(t *testing.T) {
	if d := DistanceMeters(40.7128, -74.0060, 40.7128, -74.0060); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestDistanceMeters_Symmetry(t *testing.T) {
	ab := DistanceMeters(51.5074, -0.1278, 48.8566, 2.3522)
	ba := DistanceMeters(48.8566, 2.3522, 51.5074, -0.1278)
	if math.Abs(ab-ba) > 1e-6 {
		t.Fatalf("asymmetric distance: %v vs %v", ab, ba)
	}
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// London to Paris is roughly 343 km great-circle.
	d := DistanceMeters(51.5074, -0.1278, 48.8566, 2.3522)
	if d < 340_000 || d > 350_000 {
		t.Fatalf("London-Paris distance = %v m, expected ~343 km", d)
	}
}

func TestDistanceMeters_NeverNegative(t *testing.T) {
	pts := [][4]float64{
		{90, 180, -90, -180},
		{0, 0, 0, 0.0001},
		{-45, 120, 45, -120},
	}
	for _, p := range pts {
		if d := DistanceMeters(p[0], p[1], p[2], p[3]); d < 0 {
			t.Fatalf("negative distance %v for %v", d, p)
		}
	}
}
