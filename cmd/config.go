package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPPort      string
	StorageDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaHost              string
	KafkaConsumerGroup     string
	KafkaOrderPaidTopic    string
	KafkaOrderChangedTopic string

	RedisAddr string

	OfferGracePeriod   time.Duration
	PresenceWindow     time.Duration
	AverageSpeedKmh    float64
	SweepSchedule      string
	RedispatchSchedule string
	SweepItemTimeout   time.Duration
	OperationTimeout   time.Duration
	OpenAPIValidation  bool
	LogLevel           slog.Level
}

// DSN is the libpq connection string, accepted by both gorm and lib/pq.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) KafkaBrokers() []string {
	if c.KafkaHost == "" {
		return nil
	}
	return strings.Split(c.KafkaHost, ",")
}

// LoadConfig reads the environment, optionally seeded from an env file, and applies
// command line overrides. A missing default .env file is not an error.
func LoadConfig(args []string) (Config, error) {
	flags := pflag.NewFlagSet("dispatch", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "file with environment variables to load")
	httpPort := flags.String("http-port", "", "HTTP listen port, overrides HTTP_PORT")
	storage := flags.String("storage", "", "storage driver (postgres|memory), overrides STORAGE_DRIVER")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil {
		if flags.Changed("env-file") || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", *envFile, err)
		}
	}

	env := envReader{}
	config := Config{
		HTTPPort:      env.str("HTTP_PORT", "8080"),
		StorageDriver: env.str("STORAGE_DRIVER", StoragePostgres),

		DBHost:     env.str("DB_HOST", "localhost"),
		DBPort:     env.str("DB_PORT", "5432"),
		DBUser:     env.str("DB_USER", "postgres"),
		DBPassword: env.str("DB_PASSWORD", ""),
		DBName:     env.str("DB_NAME", "dispatch"),
		DBSslMode:  env.str("DB_SSLMODE", "disable"),

		KafkaHost:              env.str("KAFKA_HOST", ""),
		KafkaConsumerGroup:     env.str("KAFKA_CONSUMER_GROUP", "dispatch"),
		KafkaOrderPaidTopic:    env.str("KAFKA_ORDER_PAID_TOPIC", "order.paid"),
		KafkaOrderChangedTopic: env.str("KAFKA_ORDER_CHANGED_TOPIC", "order.changed"),

		RedisAddr: env.str("REDIS_ADDR", ""),

		OfferGracePeriod:   env.duration("OFFER_GRACE_PERIOD", 2*time.Minute),
		PresenceWindow:     env.duration("PRESENCE_WINDOW", 2*time.Minute),
		AverageSpeedKmh:    env.float("AVERAGE_SPEED_KMH", 25),
		SweepSchedule:      env.str("SWEEP_SCHEDULE", "@every 30s"),
		RedispatchSchedule: env.str("REDISPATCH_SCHEDULE", "@every 15s"),
		SweepItemTimeout:   env.duration("SWEEP_ITEM_TIMEOUT", 5*time.Second),
		OperationTimeout:   env.duration("OPERATION_TIMEOUT", 10*time.Second),
		OpenAPIValidation:  env.bool("OPENAPI_VALIDATION", true),
		LogLevel:           env.level("LOG_LEVEL", slog.LevelInfo),
	}
	if env.err != nil {
		return Config{}, env.err
	}

	if *httpPort != "" {
		config.HTTPPort = *httpPort
	}
	if *storage != "" {
		config.StorageDriver = *storage
	}

	return config, config.Validate()
}

func (c Config) Validate() error {
	var err error
	if c.StorageDriver != StoragePostgres && c.StorageDriver != StorageMemory {
		err = errors.Join(err, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q",
			StoragePostgres, StorageMemory, c.StorageDriver))
	}
	if c.HTTPPort == "" {
		err = errors.Join(err, errors.New("HTTP_PORT is required"))
	}
	if c.OfferGracePeriod <= 0 {
		err = errors.Join(err, errors.New("OFFER_GRACE_PERIOD must be positive"))
	}
	if c.PresenceWindow <= 0 {
		err = errors.Join(err, errors.New("PRESENCE_WINDOW must be positive"))
	}
	if c.AverageSpeedKmh <= 0 {
		err = errors.Join(err, errors.New("AVERAGE_SPEED_KMH must be positive"))
	}
	return err
}

// envReader remembers the first malformed value.
type envReader struct {
	err error
}

func (r *envReader) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return d
}

func (r *envReader) float(key string, fallback float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return f
}

func (r *envReader) bool(key string, fallback bool) bool {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return b
}

func (r *envReader) level(key string, fallback slog.Level) slog.Level {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		r.fail(key, err)
		return fallback
	}
	return level
}

func (r *envReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
