package services

import (
	"cmp"
	"slices"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
)

// Candidate is a rider eligible for an offer together with its distance to the pickup point.
type Candidate struct {
	Rider      *rider.Rider
	DistanceKm float64
}

// RankOption tunes a single Rank call.
type RankOption func(*rankOptions)

type rankOptions struct {
	exclude []kernel.UUID
}

// Excluding drops the given riders from the result, e.g. the rider whose offer just timed out.
func Excluding(ids ...kernel.UUID) RankOption {
	return func(o *rankOptions) {
		o.exclude = append(o.exclude, ids...)
	}
}

// RiderRanker orders riders by proximity to a point.
//
// Business rules:
//   - Only riders that can receive work are considered: available, positioned and
//     seen within the presence window
//   - Candidates are sorted ascending by haversine distance
//   - Equal distances are broken by the lowest rider id so selection is deterministic
//
// An empty result is a normal outcome meaning no capacity right now.
type RiderRanker struct {
	presenceWindow time.Duration
}

// NewRiderRanker creates a ranker that treats heartbeats older than presenceWindow as stale.
func NewRiderRanker(presenceWindow time.Duration) RiderRanker {
	return RiderRanker{presenceWindow: presenceWindow}
}

// PresenceWindow returns the freshness cutoff used by Rank.
func (r RiderRanker) PresenceWindow() time.Duration {
	return r.presenceWindow
}

// Rank filters and sorts riders relative to point.
//
// Parameters:
//   - point: the pickup location
//   - riders: candidates loaded from the directory, in any order
//   - now: reference time for the freshness check
//   - opts: optional exclusions
//
// Returns:
//   - []Candidate: eligible riders, nearest first
//   - error: validation error for point or an unconstructed rider
func (r RiderRanker) Rank(point kernel.Location, riders []*rider.Rider, now time.Time, opts ...RankOption) ([]Candidate, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}

	var o rankOptions
	for _, opt := range opts {
		opt(&o)
	}

	candidates := make([]Candidate, 0, len(riders))
	for _, rd := range riders {
		if err := rd.Validate(); err != nil {
			return nil, err
		}
		if !rd.CanReceiveWork(now, r.presenceWindow) || excluded(rd.ID(), o.exclude) {
			continue
		}

		d, err := rd.Location().DistanceKm(point)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{Rider: rd, DistanceKm: d})
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return a.Rider.ID().Compare(b.Rider.ID())
	})

	return candidates, nil
}

func excluded(id kernel.UUID, exclude []kernel.UUID) bool {
	return slices.ContainsFunc(exclude, id.IsEqual)
}
