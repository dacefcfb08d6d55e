package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/geo"
	"dispatch/internal/pkg/guard"
)

const (
	// MinLatitude and MaxLatitude bound valid WGS84 latitudes in degrees.
	MinLatitude = -90.0
	MaxLatitude = 90.0

	// MinLongitude and MaxLongitude bound valid WGS84 longitudes in degrees.
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable geographic point in decimal degrees.
// The zero value is invalid; NaN, infinities and out-of-range degrees are rejected
// by NewLocation so distance math never sees them.
//
// Example:
//
//	pickup, err := kernel.NewLocation(6.53, 3.41)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(pickup) // Location(6.530000,3.410000)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location after validating both coordinates.
//
// Parameters:
//   - lat: latitude in [MinLatitude..MaxLatitude]
//   - lng: longitude in [MinLongitude..MaxLongitude]
//
// Returns:
//   - Location: a valid location
//   - error: joined validation errors for every invalid coordinate
func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLng(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate reports whether the Location was built by NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lng returns the longitude in degrees.
func (l Location) Lng() float64 {
	return l.lng
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.lat, l.lng)
}

// IsEqual compares two constructed locations coordinate by coordinate.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lng == other.lng, nil
}

// DistanceKm returns the haversine distance between two locations in kilometres.
// Both locations must be constructed.
//
// Example:
//
//	rider, _ := kernel.NewLocation(6.52, 3.40)
//	pickup, _ := kernel.NewLocation(6.53, 3.41)
//	d, _ := rider.DistanceKm(pickup) // ≈ 1.57
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return geo.HaversineKm(l.lat, l.lng, other.lat, other.lng), nil
}

// setLat and setLng use pointer receivers so construction can validate in place.
func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", lng, MinLongitude, MaxLongitude)
	}

	l.lng = lng
	return nil
}
