package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrFindAvailableRidersQueryIsNotConstructed = errors.New(
	"FindAvailableRidersQuery must be created via NewFindAvailableRidersQuery constructor",
)

// FindAvailableRidersQuery lists riders that could take a delivery at point,
// nearest first.
type FindAvailableRidersQuery struct {
	point   kernel.Location
	exclude []kernel.UUID
	guard   guard.ConstructorGuard
}

func NewFindAvailableRidersQuery(point kernel.Location, exclude ...kernel.UUID) (FindAvailableRidersQuery, error) {
	if err := point.Validate(); err != nil {
		return FindAvailableRidersQuery{}, err
	}
	return FindAvailableRidersQuery{
		point:   point,
		exclude: append([]kernel.UUID(nil), exclude...),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q FindAvailableRidersQuery) Validate() error {
	return q.guard.Validate(ErrFindAvailableRidersQueryIsNotConstructed)
}

func (q FindAvailableRidersQuery) Point() kernel.Location {
	return q.point
}

func (q FindAvailableRidersQuery) Exclude() []kernel.UUID {
	return q.exclude
}

// FindAvailableRidersQueryResponse is one ranked candidate.
type FindAvailableRidersQueryResponse struct {
	RiderID    kernel.UUID
	Name       string
	Location   kernel.Location
	DistanceKm float64
	LastSeenAt time.Time
}
