package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	kafkaout "dispatch/internal/adapters/out/kafka"
	"dispatch/internal/adapters/out/postgres"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs, err := cmd.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	appLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.LogLevel}))
	slog.SetDefault(appLogger)

	if err := run(configs, appLogger); err != nil {
		appLogger.Error("dispatch service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(configs cmd.Config, appLogger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, closeInfra, err := openInfrastructure(ctx, configs)
	if err != nil {
		return err
	}
	defer closeInfra()

	app, err := cmd.NewCompositionRoot(configs, infra, appLogger)
	if err != nil {
		return err
	}

	router, err := app.CreateRouter(ctx)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	consumer, err := app.CreateOrderPaidConsumer()
	if err != nil {
		return fmt.Errorf("create order paid consumer: %w", err)
	}
	if consumer != nil {
		defer func() { _ = consumer.Close() }()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				appLogger.Error("order paid consumer stopped", "error", err)
				stop()
			}
		}()
	}

	if listener := app.CreateChangeListener(); listener != nil {
		go func() {
			if err := listener.Run(ctx); err != nil {
				appLogger.Error("change listener stopped", "error", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("dispatch service listening", "port", configs.HTTPPort, "storage", configs.StorageDriver)
		if err := router.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	appLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return router.Shutdown(shutdownCtx)
}

func openInfrastructure(ctx context.Context, configs cmd.Config) (cmd.Infrastructure, func(), error) {
	var (
		infra   cmd.Infrastructure
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if configs.StorageDriver == cmd.StoragePostgres {
		db, err := gorm.Open(gorm_postgres.Open(configs.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return infra, closeAll, fmt.Errorf("connect to postgres: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			closeAll()
			return infra, func() {}, fmt.Errorf("migrate schema: %w", err)
		}
		infra.DB = db
	}

	if configs.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: configs.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			closeAll()
			return infra, func() {}, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		infra.Redis = client
	}

	if brokers := configs.KafkaBrokers(); len(brokers) > 0 {
		producer, err := kafkaout.NewOrderStatusProducer(brokers, configs.KafkaOrderChangedTopic)
		if err != nil {
			closeAll()
			return infra, func() {}, fmt.Errorf("create order status producer: %w", err)
		}
		closers = append(closers, func() { _ = producer.Close() })
		infra.OrderStatusPublisher = producer
	}

	return infra, closeAll, nil
}
