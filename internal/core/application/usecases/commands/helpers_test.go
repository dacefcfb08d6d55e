package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/hub"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/metrics"
	"dispatch/internal/pkg/clock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type uowFactory struct{ store *memory.Store }

func (f uowFactory) Create() commands.UoW { return f.store.Create() }

type riderUoWFactory struct{ store *memory.Store }

func (f riderUoWFactory) Create() commands.RiderUoW { return f.store.Create() }

type orderUoWFactory struct{ store *memory.Store }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.store.Create() }

type published struct {
	OrderID kernel.UUID
	Status  order.Status
}

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	sent []published
}

func (p *fakePublisher) PublishOrderStatus(_ context.Context, orderID kernel.UUID, status order.Status, _ time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{OrderID: orderID, Status: status})
	return nil
}

func (p *fakePublisher) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// env wires every command handler over one memory store, the way the composition root does.
type env struct {
	store     *memory.Store
	clock     *clock.Manual
	hub       *hub.Hub
	publisher *fakePublisher
	registry  *prometheus.Registry

	register   commands.RegisterRiderCommandHandler
	presence   commands.UpdateRiderPresenceCommandHandler
	dispatch   commands.DispatchOrderCommandHandler
	transition commands.ApplyTransitionCommandHandler
	sweep      commands.SweepTimeoutsCommandHandler
	redispatch commands.RedispatchQueuedCommandHandler
	recordPaid commands.RecordPaidOrderCommandHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.Default()
	registry := prometheus.NewRegistry()
	m, err := metrics.NewPrometheus(registry)
	require.NoError(t, err)

	e := &env{
		store:     memory.NewStore(),
		clock:     clock.NewManual(t0),
		hub:       hub.New(logger),
		publisher: &fakePublisher{},
		registry:  registry,
	}

	feed := commands.NewChangeFeed(e.hub, logger)
	matcher := commands.NewRiderMatcher(
		services.NewRiderRanker(2*time.Minute),
		services.NewRouteEstimator(services.DefaultAverageSpeedKmh),
		m,
	)
	all := uowFactory{e.store}

	e.register = commands.NewRegisterRiderCommandHandler(riderUoWFactory{e.store}, feed, e.clock)
	e.presence = commands.NewUpdateRiderPresenceCommandHandler(riderUoWFactory{e.store}, feed, e.clock)
	e.dispatch = commands.NewDispatchOrderCommandHandler(all, matcher, feed, e.clock, m)
	e.transition = commands.NewApplyTransitionCommandHandler(
		all, orderUoWFactory{e.store}, e.publisher, feed, e.clock, m, logger)
	e.sweep = commands.NewSweepTimeoutsCommandHandler(
		all, matcher, feed, e.clock, m, logger, 2*time.Minute, time.Second)
	e.redispatch = commands.NewRedispatchQueuedCommandHandler(all, e.dispatch, logger)
	e.recordPaid = commands.NewRecordPaidOrderCommandHandler(orderUoWFactory{e.store}, e.dispatch)
	return e
}

func loc(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return l
}

func (e *env) registerRider(t *testing.T, device string, lat, lng float64) *rider.Rider {
	t.Helper()
	identity, err := rider.NewIdentity(rider.Signals{DeviceID: device})
	require.NoError(t, err)
	position := loc(t, lat, lng)
	cmd, err := commands.NewRegisterRiderCommand(identity, "Rider "+device, "+2348010000000", &position)
	require.NoError(t, err)
	result, err := e.register.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return result.Rider
}

// paidOrder stores a paid order with pickup (6.53,3.41) and drop-off (6.45,3.39).
func (e *env) paidOrder(t *testing.T) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	pickup, dropoff := loc(t, 6.53, 3.41), loc(t, 6.45, 3.39)
	o, err := order.NewOrder(id, &pickup, &dropoff, 250000, "NGN")
	require.NoError(t, err)
	e.inTx(t, func(uow ports.UnitOfWork) {
		require.NoError(t, uow.OrderRepository().Save(t.Context(), o))
	})
	return id
}

func (e *env) dispatchOrder(t *testing.T, orderID kernel.UUID) commands.DispatchResult {
	t.Helper()
	cmd, err := commands.NewDispatchOrderCommand(orderID)
	require.NoError(t, err)
	result, err := e.dispatch.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return result
}

func (e *env) act(
	t *testing.T,
	assignmentID kernel.UUID,
	action string,
	acting *kernel.UUID,
	proofURL string,
	rating *int,
) (commands.ApplyTransitionResult, error) {
	t.Helper()
	target, err := commands.ParseAction(action)
	require.NoError(t, err)
	cmd, err := commands.NewApplyTransitionCommand(assignmentID, target, acting, nil, proofURL, "", rating)
	require.NoError(t, err)
	return e.transition.Handle(t.Context(), cmd)
}

func (e *env) inTx(t *testing.T, fn func(uow ports.UnitOfWork)) {
	t.Helper()
	uow := e.store.Create()
	require.NoError(t, uow.Begin(t.Context()))
	defer func() {
		_ = uow.Rollback(t.Context())
	}()
	fn(uow)
	require.NoError(t, uow.Commit(t.Context()))
}

func (e *env) rider(t *testing.T, id kernel.UUID) *rider.Rider {
	t.Helper()
	var r *rider.Rider
	e.inTx(t, func(uow ports.UnitOfWork) {
		var err error
		r, err = uow.RiderRepository().Get(t.Context(), id)
		require.NoError(t, err)
	})
	return r
}

func (e *env) assignment(t *testing.T, id kernel.UUID) *assignment.Assignment {
	t.Helper()
	var a *assignment.Assignment
	e.inTx(t, func(uow ports.UnitOfWork) {
		var err error
		a, err = uow.AssignmentRepository().Get(t.Context(), id)
		require.NoError(t, err)
	})
	return a
}

func (e *env) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	var o *order.Order
	e.inTx(t, func(uow ports.UnitOfWork) {
		var err error
		o, err = uow.OrderRepository().Get(t.Context(), id)
		require.NoError(t, err)
	})
	return o
}

var errBrokerDown = errors.New("broker down")
