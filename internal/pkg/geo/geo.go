// Package geo holds the pure great-circle math used for rider matching and ETA estimates.
//
// Inputs are assumed to be valid WGS84 degrees; callers validate coordinates
// (see kernel.NewLocation) before invoking these functions.
package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// MinDurationMinutes floors ETA estimates so near-zero distances stay realistic.
	MinDurationMinutes = 5
)

// HaversineKm returns the great-circle distance in kilometres between two points
// given in decimal degrees.
//
// Example:
//
//	d := geo.HaversineKm(6.52, 3.40, 6.53, 3.41) // ≈ 1.57
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// EstimateDurationMinutes converts a distance into whole minutes of travel at
// avgSpeedKmh, rounding up and never returning less than MinDurationMinutes.
// A non-positive speed yields MinDurationMinutes.
func EstimateDurationMinutes(distanceKm, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 || distanceKm <= 0 || math.IsNaN(distanceKm) {
		return MinDurationMinutes
	}

	minutes := int(math.Ceil(distanceKm / avgSpeedKmh * 60))
	return max(minutes, MinDurationMinutes)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
