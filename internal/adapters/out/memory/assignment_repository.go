package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

type AssignmentRepository struct {
	uow *UnitOfWork
}

func (r *AssignmentRepository) Add(_ context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.data()
	if err != nil {
		return err
	}
	if _, ok := s.assignments[aggregate.ID()]; ok {
		return errs.NewValueIsInvalidError("assignment id already exists")
	}
	if !aggregate.IsTerminal() {
		if _, exists := activeByOrder(s, aggregate.OrderID()); exists {
			return ports.ErrActiveAssignmentExists
		}
	}
	if riderIsBusyElsewhere(s, aggregate) {
		return ports.ErrRiderAlreadyAssigned
	}

	s.seq++
	snapshot := aggregate.Snapshot()
	snapshot.Version = 1
	s.assignments[aggregate.ID()] = assignmentRow{snapshot: snapshot, seq: s.seq}
	aggregate.MarkPersisted(1)
	return nil
}

func (r *AssignmentRepository) Update(_ context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.data()
	if err != nil {
		return err
	}
	row, ok := s.assignments[aggregate.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("assignment", aggregate.ID().String())
	}
	if row.snapshot.Version != aggregate.Version() || row.snapshot.Status != aggregate.PersistedStatus() {
		return errs.NewVersionIsInvalidError("assignment")
	}
	if riderIsBusyElsewhere(s, aggregate) {
		return ports.ErrRiderAlreadyAssigned
	}

	next := aggregate.Version() + 1
	row.snapshot = aggregate.Snapshot()
	row.snapshot.Version = next
	s.assignments[aggregate.ID()] = row
	aggregate.MarkPersisted(next)
	return nil
}

func (r *AssignmentRepository) Get(_ context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}
	row, ok := s.assignments[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("assignment", id.String())
	}
	return assignment.RestoreAssignment(row.snapshot)
}

func (r *AssignmentRepository) GetActiveByOrder(_ context.Context, orderID kernel.UUID) (*assignment.Assignment, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}
	row, ok := activeByOrder(s, orderID)
	if !ok {
		return nil, errs.NewObjectNotFoundError("active assignment for order", orderID.String())
	}
	return assignment.RestoreAssignment(row.snapshot)
}

func (r *AssignmentRepository) GetLatestByOrder(_ context.Context, orderID kernel.UUID) (*assignment.Assignment, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}

	var latest *assignmentRow
	for _, row := range s.assignments {
		if !row.snapshot.OrderID.IsEqual(orderID) {
			continue
		}
		if latest == nil || row.seq > latest.seq {
			latest = &row
		}
	}
	if latest == nil {
		return nil, errs.NewObjectNotFoundError("assignment for order", orderID.String())
	}
	return assignment.RestoreAssignment(latest.snapshot)
}

func (r *AssignmentRepository) GetActiveByRider(_ context.Context, riderID kernel.UUID) (*assignment.Assignment, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}
	row, ok := activeByRider(s, riderID)
	if !ok {
		return nil, errs.NewObjectNotFoundError("active assignment for rider", riderID.String())
	}
	return assignment.RestoreAssignment(row.snapshot)
}

func (r *AssignmentRepository) FindOfferedBefore(
	_ context.Context,
	cutoff time.Time,
	limit int,
) ([]*assignment.Assignment, error) {
	return r.find(limit, func(row assignmentRow) bool {
		return row.snapshot.Status == assignment.Offered &&
			row.snapshot.OfferedAt != nil &&
			row.snapshot.OfferedAt.Before(cutoff)
	}, func(a, b assignmentRow) int {
		return a.snapshot.OfferedAt.Compare(*b.snapshot.OfferedAt)
	})
}

func (r *AssignmentRepository) FindQueued(_ context.Context, limit int) ([]*assignment.Assignment, error) {
	return r.find(limit, func(row assignmentRow) bool {
		return row.snapshot.Status == assignment.Queued
	}, func(a, b assignmentRow) int {
		return a.snapshot.CreatedAt.Compare(b.snapshot.CreatedAt)
	})
}

func (r *AssignmentRepository) AppendEvents(_ context.Context, events []assignment.Event) error {
	s, err := r.uow.data()
	if err != nil {
		return err
	}
	for _, e := range events {
		s.events[e.AssignmentID] = append(s.events[e.AssignmentID], e)
	}
	return nil
}

func (r *AssignmentRepository) ListEvents(_ context.Context, assignmentID kernel.UUID) ([]assignment.Event, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}
	return append([]assignment.Event{}, s.events[assignmentID]...), nil
}

func (r *AssignmentRepository) find(
	limit int,
	match func(assignmentRow) bool,
	order func(a, b assignmentRow) int,
) ([]*assignment.Assignment, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}

	rows := make([]assignmentRow, 0)
	for _, row := range s.assignments {
		if match(row) {
			rows = append(rows, row)
		}
	}
	slices.SortFunc(rows, func(a, b assignmentRow) int {
		if c := order(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]*assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		a, err := assignment.RestoreAssignment(row.snapshot)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

func activeByOrder(s *state, orderID kernel.UUID) (assignmentRow, bool) {
	for _, row := range s.assignments {
		if row.snapshot.OrderID.IsEqual(orderID) && !row.snapshot.Status.IsTerminal() {
			return row, true
		}
	}
	return assignmentRow{}, false
}

func activeByRider(s *state, riderID kernel.UUID) (assignmentRow, bool) {
	for _, row := range s.assignments {
		id := row.snapshot.RiderID
		if id != nil && id.IsEqual(riderID) && !row.snapshot.Status.IsTerminal() {
			return row, true
		}
	}
	return assignmentRow{}, false
}

// riderIsBusyElsewhere mirrors the one-active-assignment-per-rider index.
func riderIsBusyElsewhere(s *state, a *assignment.Assignment) bool {
	if a.IsTerminal() || a.RiderID() == nil {
		return false
	}
	row, busy := activeByRider(s, *a.RiderID())
	return busy && !row.snapshot.ID.IsEqual(a.ID())
}
