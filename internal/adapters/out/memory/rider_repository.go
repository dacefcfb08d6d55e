package memory

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/pkg/errs"
)

type RiderRepository struct {
	uow *UnitOfWork
}

func (r *RiderRepository) Add(_ context.Context, aggregate *rider.Rider) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.data()
	if err != nil {
		return err
	}
	if _, ok := s.riders[aggregate.ID()]; ok {
		return errs.NewValueIsInvalidError("rider id already registered")
	}

	s.riders[aggregate.ID()] = riderFromDomain(aggregate)
	return nil
}

func (r *RiderRepository) Get(_ context.Context, id kernel.UUID) (*rider.Rider, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}
	row, ok := s.riders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("rider", id.String())
	}
	return riderToDomain(row)
}

func (r *RiderRepository) UpdateProfile(_ context.Context, aggregate *rider.Rider) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.data()
	if err != nil {
		return err
	}
	row, ok := s.riders[aggregate.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("rider", aggregate.ID().String())
	}

	updated := riderFromDomain(aggregate)
	updated.available = row.available
	s.riders[aggregate.ID()] = updated
	return nil
}

func (r *RiderRepository) UpdatePresence(
	_ context.Context,
	id kernel.UUID,
	location kernel.Location,
	seenAt time.Time,
) (bool, error) {
	s, row, err := r.load(id)
	if err != nil {
		return false, err
	}
	if seenAt.Before(row.lastSeenAt) {
		return false, nil
	}

	loc := location
	row.location = &loc
	row.lastSeenAt = seenAt.UTC()
	s.riders[id] = row
	return true, nil
}

func (r *RiderRepository) Claim(_ context.Context, id kernel.UUID) (bool, error) {
	s, row, err := r.load(id)
	if err != nil {
		return false, err
	}
	if _, busy := activeByRider(s, id); busy {
		return false, nil
	}

	err = r.apply(s, row, func(rd *rider.Rider) error { return rd.Claim() })
	if errors.Is(err, rider.ErrRiderIsUnavailable) {
		return false, nil
	}
	return err == nil, err
}

func (r *RiderRepository) Release(_ context.Context, id kernel.UUID) error {
	s, row, err := r.load(id)
	if err != nil {
		return err
	}
	return r.apply(s, row, func(rd *rider.Rider) error {
		rd.Release()
		return nil
	})
}

func (r *RiderRepository) GoOnline(_ context.Context, id kernel.UUID) (bool, error) {
	s, row, err := r.load(id)
	if err != nil {
		return false, err
	}
	if _, busy := activeByRider(s, id); busy {
		return false, nil
	}

	err = r.apply(s, row, func(rd *rider.Rider) error {
		rd.Release()
		return nil
	})
	return err == nil, err
}

func (r *RiderRepository) GoOffline(_ context.Context, id kernel.UUID) error {
	s, row, err := r.load(id)
	if err != nil {
		return err
	}
	return r.apply(s, row, func(rd *rider.Rider) error {
		rd.GoOffline()
		return nil
	})
}

func (r *RiderRepository) FindAvailable(_ context.Context, freshSince time.Time) ([]*rider.Rider, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}

	riders := make([]*rider.Rider, 0)
	for _, row := range s.riders {
		if !row.available || row.location == nil || row.lastSeenAt.Before(freshSince) {
			continue
		}
		rd, err := riderToDomain(row)
		if err != nil {
			return nil, err
		}
		riders = append(riders, rd)
	}
	return riders, nil
}

// apply runs an availability change through the aggregate and stores the result.
func (r *RiderRepository) apply(s *state, row riderRow, change func(*rider.Rider) error) error {
	rd, err := riderToDomain(row)
	if err != nil {
		return err
	}
	if err = change(rd); err != nil {
		return err
	}

	row.available = rd.IsAvailable()
	s.riders[row.id] = row
	return nil
}

func (r *RiderRepository) load(id kernel.UUID) (*state, riderRow, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, riderRow{}, err
	}
	row, ok := s.riders[id]
	if !ok {
		return nil, riderRow{}, errs.NewObjectNotFoundError("rider", id.String())
	}
	return s, row, nil
}

func riderFromDomain(r *rider.Rider) riderRow {
	return riderRow{
		id:          r.ID(),
		fingerprint: r.Identity().Fingerprint(),
		name:        r.Name(),
		phone:       r.Phone(),
		location:    r.Location(),
		lastSeenAt:  r.LastSeenAt(),
		available:   r.IsAvailable(),
	}
}

func riderToDomain(row riderRow) (*rider.Rider, error) {
	identity, err := rider.IdentityFromFingerprint(row.fingerprint)
	if err != nil {
		return nil, err
	}
	return rider.RestoreRider(row.id, identity, row.name, row.phone, row.location, row.lastSeenAt, row.available)
}
