package services

import (
	"errors"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/geo"
)

// DefaultAverageSpeedKmh is the urban courier speed used when none is configured.
const DefaultAverageSpeedKmh = 25.0

// RouteEstimator quotes an offer.
// The distance is the pickup leg (rider to pickup); the duration covers the pickup leg
// plus the delivery leg (pickup to drop-off) at a constant average speed.
type RouteEstimator struct {
	avgSpeedKmh float64
}

func NewRouteEstimator(avgSpeedKmh float64) RouteEstimator {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = DefaultAverageSpeedKmh
	}
	return RouteEstimator{avgSpeedKmh: avgSpeedKmh}
}

// Estimate computes the quote for a rider at riderAt taking the order from pickup to dropoff.
func (e RouteEstimator) Estimate(riderAt, pickup, dropoff kernel.Location) (assignment.Estimate, error) {
	if err := errors.Join(riderAt.Validate(), pickup.Validate(), dropoff.Validate()); err != nil {
		return assignment.Estimate{}, err
	}

	pickupLeg := geo.HaversineKm(riderAt.Lat(), riderAt.Lng(), pickup.Lat(), pickup.Lng())
	deliveryLeg := geo.HaversineKm(pickup.Lat(), pickup.Lng(), dropoff.Lat(), dropoff.Lng())

	return assignment.NewEstimate(pickupLeg, geo.EstimateDurationMinutes(pickupLeg+deliveryLeg, e.avgSpeedKmh))
}
