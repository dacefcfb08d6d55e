package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// DefaultClaimRounds bounds how many times candidate selection is repeated when
// every candidate of a round was claimed by a competing dispatcher.
const DefaultClaimRounds = 3

// RiderMatcher selects and claims the nearest eligible rider for a pickup point.
// It is shared by dispatch, queued re-dispatch and the timeout sweeper.
type RiderMatcher struct {
	ranker    services.RiderRanker
	estimator services.RouteEstimator
	metrics   ports.Metrics
	rounds    int
}

func NewRiderMatcher(ranker services.RiderRanker, estimator services.RouteEstimator, metrics ports.Metrics) RiderMatcher {
	return RiderMatcher{
		ranker:    ranker,
		estimator: estimator,
		metrics:   metrics,
		rounds:    DefaultClaimRounds,
	}
}

// Match is a claimed rider together with the quote for the assignment.
type Match struct {
	Candidate services.Candidate
	Estimate  assignment.Estimate
}

// ClaimNearest walks the ranked candidates and atomically claims the first one still
// available. A lost claim moves on to the next candidate; when a whole round is lost
// the directory is queried again. A nil Match with a nil error means no capacity.
func (m RiderMatcher) ClaimNearest(
	ctx context.Context,
	riders ports.RiderRepository,
	a *assignment.Assignment,
	now time.Time,
	exclude ...kernel.UUID,
) (*Match, error) {
	skip := append([]kernel.UUID(nil), exclude...)

	for range m.rounds {
		available, err := riders.FindAvailable(ctx, now.Add(-m.ranker.PresenceWindow()))
		if err != nil {
			return nil, err
		}

		candidates, err := m.ranker.Rank(a.Pickup(), available, now, services.Excluding(skip...))
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, nil
		}

		for _, c := range candidates {
			claimed, err := riders.Claim(ctx, c.Rider.ID())
			if err != nil {
				return nil, err
			}
			if !claimed {
				m.metrics.ClaimConflict()
				skip = append(skip, c.Rider.ID())
				continue
			}

			estimate, err := m.estimator.Estimate(*c.Rider.Location(), a.Pickup(), a.Dropoff())
			if err != nil {
				return nil, err
			}
			return &Match{Candidate: c, Estimate: estimate}, nil
		}
	}

	return nil, nil
}
