package kernel

import (
	"errors"
	"fmt"
	"math"

	"supplychain/internal/pkg/errs"
	"supplychain/internal/pkg/guard"
)

const (
	// LatitudeMin is the southernmost valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the northernmost valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the westernmost valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the easternmost valid longitude in degrees.
	LongitudeMax = 180.0
)

// ErrLocationIsNotConstructed is returned when a Location was not created
// through NewLocation. The zero value is never a valid coordinate pair.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is a WGS84 coordinate pair. It is used for delivery destinations,
// supplier origins and the simulated position of a shipment.
// Location is an immutable value object; the zero value fails validation.
//
// Example:
//
//	loc, err := kernel.NewLocation(52.52, 13.40)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(loc) // Output: Location(52.520000,13.400000)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location from latitude and longitude in degrees.
// Every invalid coordinate is reported, not just the first one. NaN is never
// a valid coordinate.
//
// Parameters:
//   - lat: latitude, between LatitudeMin and LatitudeMax inclusive
//   - lng: longitude, between LongitudeMin and LongitudeMax inclusive
//
// Returns:
//   - Location: a valid location
//   - error: errs.ValueIsOutOfRangeError for each coordinate out of bounds
//
// Example:
//
//	rotterdam, err := NewLocation(51.9244, 4.4777)
//	if err != nil {
//	    return fmt.Errorf("invalid origin: %w", err)
//	}
func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(lat), loc.setLongitude(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate reports whether the Location was built by NewLocation.
//
// Returns:
//   - error: ErrLocationIsNotConstructed for the zero value, nil otherwise
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (l Location) Latitude() float64 {
	return l.lat
}

// Longitude returns the longitude in degrees.
func (l Location) Longitude() float64 {
	return l.lng
}

// String implements fmt.Stringer with six decimal places, roughly 10 cm.
//
// Example:
//
//	loc, _ := NewLocation(1.29, 103.85)
//	fmt.Println(loc) // Output: Location(1.290000,103.850000)
func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lng)
}

// IsEqual compares two locations coordinate by coordinate.
// Both locations must be constructed.
//
// Parameters:
//   - other: the Location to compare with
//
// Returns:
//   - bool: true if both coordinates match exactly
//   - error: validation error if either location is not constructed
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lng == other.lng, nil
}

// Interpolate returns the point at fraction of the straight line from l to
// target. The fraction is clamped to [0, 1], so Interpolate(target, 0) is l and
// Interpolate(target, 1) is target. The line is drawn in degrees, not along a
// great circle, which is what the shipment simulation needs.
//
// Parameters:
//   - target: the end of the line
//   - fraction: position along the line, 0 at l and 1 at target
//
// Returns:
//   - Location: the interpolated point
//   - error: validation error if either endpoint is not constructed
//
// Example:
//
//	from, _ := NewLocation(0, 0)
//	to, _ := NewLocation(10, 20)
//	mid, _ := from.Interpolate(to, 0.5) // Location(5.000000,10.000000)
func (l Location) Interpolate(target Location, fraction float64) (Location, error) {
	if err := errors.Join(l.Validate(), target.Validate()); err != nil {
		return Location{}, err
	}

	switch {
	case fraction <= 0:
		return l, nil
	case fraction >= 1:
		return target, nil
	}

	return NewLocation(
		l.lat+(target.lat-l.lat)*fraction,
		l.lng+(target.lng-l.lng)*fraction,
	)
}

// setLatitude sets the latitude with validation.
// Pointer receivers on the private setters let construction validate in
// place while the public API stays on value receivers.
func (l *Location) setLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", lat, LatitudeMin, LatitudeMax)
	}

	l.lat = lat
	return nil
}

// setLongitude sets the longitude with validation.
func (l *Location) setLongitude(lng float64) error {
	if math.IsNaN(lng) || lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", lng, LongitudeMin, LongitudeMax)
	}

	l.lng = lng
	return nil
}
