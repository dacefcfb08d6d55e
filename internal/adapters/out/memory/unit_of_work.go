// Package memory is an in-process storage driver used for local runs and tests.
//
// Units of work are serialized: Begin acquires the store for the lifetime of the
// unit and takes a copy of the state, Rollback restores that copy. This gives the
// same all-or-nothing behaviour the Postgres driver gets from transactions, and the
// conditional rider updates behave identically because no two units interleave.
package memory

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

var (
	// ErrTransactionIsNotActive is returned when a repository is used outside Begin/Commit.
	ErrTransactionIsNotActive = errors.New("memory: no active transaction")
	// ErrTransactionIsActive is returned when Begin is called twice on the same unit.
	ErrTransactionIsActive = errors.New("memory: transaction already started")
)

type riderRow struct {
	id          kernel.UUID
	fingerprint string
	name        string
	phone       string
	location    *kernel.Location
	lastSeenAt  time.Time
	available   bool
}

type orderRow struct {
	id       kernel.UUID
	pickup   *kernel.Location
	dropoff  *kernel.Location
	total    int64
	currency string
	status   order.Status
}

type assignmentRow struct {
	snapshot assignment.Snapshot
	// seq keeps insertion order for "latest" and "oldest first" reads.
	seq int64
}

type state struct {
	riders      map[kernel.UUID]riderRow
	orders      map[kernel.UUID]orderRow
	assignments map[kernel.UUID]assignmentRow
	events      map[kernel.UUID][]assignment.Event
	seq         int64
}

func newState() *state {
	return &state{
		riders:      make(map[kernel.UUID]riderRow),
		orders:      make(map[kernel.UUID]orderRow),
		assignments: make(map[kernel.UUID]assignmentRow),
		events:      make(map[kernel.UUID][]assignment.Event),
	}
}

func (s *state) clone() *state {
	c := &state{
		riders:      make(map[kernel.UUID]riderRow, len(s.riders)),
		orders:      make(map[kernel.UUID]orderRow, len(s.orders)),
		assignments: make(map[kernel.UUID]assignmentRow, len(s.assignments)),
		events:      make(map[kernel.UUID][]assignment.Event, len(s.events)),
		seq:         s.seq,
	}
	for k, v := range s.riders {
		c.riders[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.events {
		c.events[k] = append([]assignment.Event(nil), v...)
	}
	return c
}

// Store holds the data shared by every unit of work it creates.
type Store struct {
	sem   chan struct{}
	state *state
}

func NewStore() *Store {
	return &Store{
		sem:   make(chan struct{}, 1),
		state: newState(),
	}
}

// Create returns a new unit of work over the store.
func (s *Store) Create() ports.UnitOfWork {
	return &UnitOfWork{store: s}
}

// UnitOfWork is a serialized transaction over a Store. It is not safe for concurrent use.
type UnitOfWork struct {
	store  *Store
	backup *state
	active bool
}

// Begin waits for the store to be free or for ctx to end.
func (uow *UnitOfWork) Begin(ctx context.Context) error {
	if uow.active {
		return ErrTransactionIsActive
	}

	select {
	case uow.store.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	uow.backup = uow.store.state.clone()
	uow.active = true
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrTransactionIsNotActive
	}

	uow.release()
	return nil
}

// Rollback restores the state captured by Begin. It is a no-op after Commit.
func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return nil
	}

	uow.store.state = uow.backup
	uow.release()
	return nil
}

func (uow *UnitOfWork) RiderRepository() ports.RiderRepository {
	return &RiderRepository{uow: uow}
}

func (uow *UnitOfWork) AssignmentRepository() ports.AssignmentRepository {
	return &AssignmentRepository{uow: uow}
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: uow}
}

func (uow *UnitOfWork) release() {
	uow.backup = nil
	uow.active = false
	<-uow.store.sem
}

func (uow *UnitOfWork) data() (*state, error) {
	if !uow.active {
		return nil, ErrTransactionIsNotActive
	}
	return uow.store.state, nil
}
