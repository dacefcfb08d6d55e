package queries

import (
	"context"

	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// FindAvailableRidersQueryHandler ranks available riders with a fresh heartbeat by
// distance to the query point, ties broken by rider id. An empty result is normal.
type FindAvailableRidersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	ranker     services.RiderRanker
	clock      ports.Clock
}

func NewFindAvailableRidersQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	ranker services.RiderRanker,
	clock ports.Clock,
) FindAvailableRidersQueryHandler {
	return FindAvailableRidersQueryHandler{
		uowFactory: uowFactory,
		ranker:     ranker,
		clock:      clock,
	}
}

func (h FindAvailableRidersQueryHandler) Handle(
	ctx context.Context,
	query FindAvailableRidersQuery,
) ([]FindAvailableRidersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	response := make([]FindAvailableRidersQueryResponse, 0)

	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		riders, err := uow.RiderRepository().FindAvailable(ctx, now.Add(-h.ranker.PresenceWindow()))
		if err != nil {
			return err
		}

		candidates, err := h.ranker.Rank(query.Point(), riders, now, services.Excluding(query.Exclude()...))
		if err != nil {
			return err
		}

		for _, c := range candidates {
			response = append(response, FindAvailableRidersQueryResponse{
				RiderID:    c.Rider.ID(),
				Name:       c.Rider.Name(),
				Location:   *c.Rider.Location(),
				DistanceKm: c.DistanceKm,
				LastSeenAt: c.Rider.LastSeenAt(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
