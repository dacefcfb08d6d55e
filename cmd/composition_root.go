package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpin "dispatch/internal/adapters/in/http"
	kafkain "dispatch/internal/adapters/in/kafka"
	"dispatch/internal/adapters/in/pglisten"
	"dispatch/internal/adapters/out/hub"
	"dispatch/internal/adapters/out/lock"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/metrics"
	"dispatch/internal/pkg/clock"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const jobLeaseTTL = time.Minute

// Infrastructure holds the connections opened by main. Nil members select the
// single-process fallback: memory storage, in-process lease, logged order status.
type Infrastructure struct {
	DB                   *gorm.DB
	Redis                redis.UniversalClient
	OrderStatusPublisher ports.OrderStatusPublisher
	Clock                ports.Clock
}

type CompositionRoot struct {
	config Config
	logger *slog.Logger

	uowFactory ports.UnitOfWorkFactory
	hub        *hub.Hub
	notifier   ports.AssignmentNotifier
	publisher  ports.OrderStatusPublisher
	locker     ports.Locker
	clock      ports.Clock
	registry   *prometheus.Registry
	metrics    ports.Metrics
	ranker     services.RiderRanker
	estimator  services.RouteEstimator
}

func NewCompositionRoot(config Config, infra Infrastructure, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewPrometheus(registry)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		config:    config,
		logger:    logger,
		hub:       hub.New(logger),
		publisher: infra.OrderStatusPublisher,
		clock:     infra.Clock,
		registry:  registry,
		metrics:   m,
		ranker:    services.NewRiderRanker(config.PresenceWindow),
		estimator: services.NewRouteEstimator(config.AverageSpeedKmh),
	}

	if infra.DB != nil {
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(infra.DB)
		// Every replica, this one included, hears its own notifications through LISTEN.
		c.notifier = postgres.NewNotifier(infra.DB)
	} else {
		c.uowFactory = memory.NewStore()
		c.notifier = c.hub
	}
	if infra.Redis != nil {
		c.locker = lock.NewRedisLocker(infra.Redis, "dispatch:")
	} else {
		c.locker = lock.NewLocalLocker()
	}
	if c.publisher == nil {
		c.publisher = loggedOrderStatus{logger: logger.With("component", "order_status")}
	}
	if c.clock == nil {
		c.clock = clock.System{}
	}

	return c, nil
}

func (c *CompositionRoot) Hub() *hub.Hub {
	return c.hub
}

func (c *CompositionRoot) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) riderUoW() commands.RiderUoWFactory {
	return FuncRiderUoWFactory(func() commands.RiderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) feed() commands.ChangeFeed {
	return commands.NewChangeFeed(c.notifier, c.logger)
}

func (c *CompositionRoot) matcher() commands.RiderMatcher {
	return commands.NewRiderMatcher(c.ranker, c.estimator, c.metrics)
}

func (c *CompositionRoot) CreateRegisterRiderCommandHandler() commands.RegisterRiderCommandHandler {
	return commands.NewRegisterRiderCommandHandler(c.riderUoW(), c.feed(), c.clock)
}

func (c *CompositionRoot) CreateUpdateRiderPresenceCommandHandler() commands.UpdateRiderPresenceCommandHandler {
	return commands.NewUpdateRiderPresenceCommandHandler(c.riderUoW(), c.feed(), c.clock)
}

func (c *CompositionRoot) CreateDispatchOrderCommandHandler() commands.DispatchOrderCommandHandler {
	return commands.NewDispatchOrderCommandHandler(c.uow(), c.matcher(), c.feed(), c.clock, c.metrics)
}

func (c *CompositionRoot) CreateRecordPaidOrderCommandHandler() commands.RecordPaidOrderCommandHandler {
	return commands.NewRecordPaidOrderCommandHandler(c.orderUoW(), c.CreateDispatchOrderCommandHandler())
}

func (c *CompositionRoot) CreateApplyTransitionCommandHandler() commands.ApplyTransitionCommandHandler {
	return commands.NewApplyTransitionCommandHandler(
		c.uow(), c.orderUoW(), c.publisher, c.feed(), c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateSweepTimeoutsCommandHandler() commands.SweepTimeoutsCommandHandler {
	return commands.NewSweepTimeoutsCommandHandler(
		c.uow(), c.matcher(), c.feed(), c.clock, c.metrics, c.logger,
		c.config.OfferGracePeriod, c.config.SweepItemTimeout)
}

func (c *CompositionRoot) CreateRedispatchQueuedCommandHandler() commands.RedispatchQueuedCommandHandler {
	return commands.NewRedispatchQueuedCommandHandler(c.uow(), c.CreateDispatchOrderCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateGetAssignmentQueryHandler() queries.GetAssignmentQueryHandler {
	return queries.NewGetAssignmentQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetOrderAssignmentQueryHandler() queries.GetOrderAssignmentQueryHandler {
	return queries.NewGetOrderAssignmentQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateFindAvailableRidersQueryHandler() queries.FindAvailableRidersQueryHandler {
	return queries.NewFindAvailableRidersQueryHandler(c.uowFactory, c.ranker, c.clock)
}

func (c *CompositionRoot) CreatePollRiderAssignmentQueryHandler() queries.PollRiderAssignmentQueryHandler {
	return queries.NewPollRiderAssignmentQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateListAssignmentEventsQueryHandler() queries.ListAssignmentEventsQueryHandler {
	return queries.NewListAssignmentEventsQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		RegisterRider:    c.CreateRegisterRiderCommandHandler(),
		UpdatePresence:   c.CreateUpdateRiderPresenceCommandHandler(),
		RecordPaidOrder:  c.CreateRecordPaidOrderCommandHandler(),
		ApplyTransition:  c.CreateApplyTransitionCommandHandler(),
		SweepTimeouts:    c.CreateSweepTimeoutsCommandHandler(),
		RedispatchQueued: c.CreateRedispatchQueuedCommandHandler(),

		GetAssignment:        c.CreateGetAssignmentQueryHandler(),
		GetOrderAssignment:   c.CreateGetOrderAssignmentQueryHandler(),
		FindAvailableRiders:  c.CreateFindAvailableRidersQueryHandler(),
		PollRiderAssignment:  c.CreatePollRiderAssignmentQueryHandler(),
		ListAssignmentEvents: c.CreateListAssignmentEventsQueryHandler(),
	}, c.hub, c.logger)
}

func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	return httpin.NewRouter(ctx, c.CreateHTTPServer(), c.logger, httpin.RouterOptions{
		OperationTimeout: c.config.OperationTimeout,
		ValidateRequests: c.config.OpenAPIValidation,
		Metrics:          c.MetricsHandler(),
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewTimeoutSweeperJob(
			c.CreateSweepTimeoutsCommandHandler(), c.locker, c.config.SweepSchedule, jobLeaseTTL, c.logger),
		jobs.NewQueuedRedispatchJob(
			c.CreateRedispatchQueuedCommandHandler(), c.locker, c.config.RedispatchSchedule, jobLeaseTTL, c.logger),
	)
}

// CreateOrderPaidConsumer returns nil when Kafka is not configured.
func (c *CompositionRoot) CreateOrderPaidConsumer() (*kafkain.OrderPaidConsumer, error) {
	brokers := c.config.KafkaBrokers()
	if len(brokers) == 0 {
		return nil, nil
	}
	return kafkain.NewOrderPaidConsumer(
		brokers,
		c.config.KafkaConsumerGroup,
		c.config.KafkaOrderPaidTopic,
		c.CreateRecordPaidOrderCommandHandler(),
		c.config.OperationTimeout,
		c.logger,
	)
}

// CreateChangeListener returns nil for the memory driver, where the hub is fed directly.
func (c *CompositionRoot) CreateChangeListener() *pglisten.Listener {
	if c.config.StorageDriver != StoragePostgres {
		return nil
	}
	return pglisten.NewListener(c.config.DSN(), postgres.ChangesChannel, c.hub, c.logger)
}

type FuncRiderUoWFactory func() commands.RiderUoW

func (f FuncRiderUoWFactory) Create() commands.RiderUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// loggedOrderStatus stands in for the Kafka producer when no broker is configured.
type loggedOrderStatus struct {
	logger *slog.Logger
}

func (p loggedOrderStatus) PublishOrderStatus(ctx context.Context, orderID kernel.UUID, status order.Status, at time.Time) error {
	p.logger.InfoContext(ctx, "order status changed",
		"order_id", orderID.String(), "status", string(status), "occurred_at", at)
	return nil
}
