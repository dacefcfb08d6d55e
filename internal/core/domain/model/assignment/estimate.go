package assignment

import (
	"errors"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrEstimateIsNotConstructed = errors.New("Estimate must be created via NewEstimate constructor")

// Estimate is the route quote attached to an offer: the rider-to-pickup distance
// and the expected duration of both legs.
type Estimate struct {
	distanceKm      float64
	durationMinutes int
	guard           guard.ConstructorGuard
}

func NewEstimate(distanceKm float64, durationMinutes int) (Estimate, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return Estimate{}, errs.NewValueIsOutOfRangeError("distanceKm", distanceKm, 0, math.MaxFloat64)
	}
	if durationMinutes <= 0 {
		return Estimate{}, errs.NewValueIsOutOfRangeError("estimatedDurationMinutes", durationMinutes, 1, math.MaxInt32)
	}
	return Estimate{
		distanceKm:      distanceKm,
		durationMinutes: durationMinutes,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (e Estimate) Validate() error {
	return e.guard.Validate(ErrEstimateIsNotConstructed)
}

func (e Estimate) DistanceKm() float64 {
	return e.distanceKm
}

func (e Estimate) DurationMinutes() int {
	return e.durationMinutes
}
