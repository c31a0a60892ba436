package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends selectable through ORDERS_STORE and IDEMPOTENCY_STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
)

// ErrInvalidStore is returned for an unknown store backend.
var ErrInvalidStore = errors.New("invalid store backend")

// Config captures runtime configuration for the API service.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Broker    BrokerConfig
	Redis     RedisConfig
	Orders    OrdersConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

// BrokerConfig points at RabbitMQ. An empty URL disables event publishing.
type BrokerConfig struct {
	URL      string
	Exchange string
}

type RedisConfig struct {
	Addr           string
	IdempotencyTTL time.Duration
}

type OrdersConfig struct {
	DiscountPerCup   int
	CatalogPath      string
	Store            string
	IdempotencyStore string
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	OTelInsecure  bool
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	defaultHTTPPort       = 8080
	defaultShutdownGrace  = 15
	defaultMigrationsPath = "migrations"
	defaultAutoMigrate    = true
	defaultServiceName    = "cafepos-api"
	defaultServiceVersion = "0.1.0"
	defaultEnvironment    = "development"
	defaultLogLevel       = "info"
	defaultOTelSampleRate = 1.0
	defaultExchange       = "orders"
	defaultRedisAddr      = "localhost:6379"
	defaultIdempotencyTTL = 24 * time.Hour
	defaultDiscountPerCup = 100
)

// Load reads configuration from environment variables, applying defaults when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	dbCfg := loadDatabaseConfig()
	brokerCfg := loadBrokerConfig()

	redisCfg, err := loadRedisConfig()
	if err != nil {
		return nil, fmt.Errorf("loading redis config: %w", err)
	}

	ordersCfg, err := loadOrdersConfig()
	if err != nil {
		return nil, fmt.Errorf("loading orders config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	serviceCfg := loadServiceConfig()

	return &Config{
		HTTP:      httpCfg,
		Database:  dbCfg,
		Broker:    brokerCfg,
		Redis:     redisCfg,
		Orders:    ordersCfg,
		Telemetry: telCfg,
		Service:   serviceCfg,
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port := defaultHTTPPort
	if value, ok := os.LookupEnv("API_HTTP_PORT"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_HTTP_PORT: %w", err)
		}
		port = parsed
	}

	shutdownGrace := defaultShutdownGrace
	if value, ok := os.LookupEnv("API_SHUTDOWN_GRACE_SECONDS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_SHUTDOWN_GRACE_SECONDS: %w", err)
		}
		shutdownGrace = parsed
	}

	return HTTPConfig{
		Port:          port,
		ShutdownGrace: shutdownGrace,
	}, nil
}

func loadDatabaseConfig() DatabaseConfig {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	autoMigrate := defaultAutoMigrate
	if value, ok := os.LookupEnv("AUTO_MIGRATE"); ok {
		autoMigrate = value == "true"
	}

	migrationsPath := getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath)

	return DatabaseConfig{
		URL:            databaseURL,
		AutoMigrate:    autoMigrate,
		MigrationsPath: migrationsPath,
	}
}

func loadBrokerConfig() BrokerConfig {
	return BrokerConfig{
		URL:      os.Getenv("RABBITMQ_URL"),
		Exchange: getEnvOrDefault("RABBITMQ_EXCHANGE", defaultExchange),
	}
}

func loadRedisConfig() (RedisConfig, error) {
	ttl := defaultIdempotencyTTL
	if value, ok := os.LookupEnv("IDEMPOTENCY_TTL"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return RedisConfig{}, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
		}
		ttl = parsed
	}

	return RedisConfig{
		Addr:           getEnvOrDefault("REDIS_ADDR", defaultRedisAddr),
		IdempotencyTTL: ttl,
	}, nil
}

func loadOrdersConfig() (OrdersConfig, error) {
	discount := defaultDiscountPerCup
	if value, ok := os.LookupEnv("ORDERS_DISCOUNT_PER_CUP"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return OrdersConfig{}, fmt.Errorf("invalid ORDERS_DISCOUNT_PER_CUP: %w", err)
		}
		if parsed < 0 {
			return OrdersConfig{}, fmt.Errorf("invalid ORDERS_DISCOUNT_PER_CUP: %d is negative", parsed)
		}
		discount = parsed
	}

	cfg := OrdersConfig{
		DiscountPerCup:   discount,
		CatalogPath:      os.Getenv("CATALOG_PATH"),
		Store:            getEnvOrDefault("ORDERS_STORE", StorePostgres),
		IdempotencyStore: getEnvOrDefault("IDEMPOTENCY_STORE", StorePostgres),
	}

	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return OrdersConfig{}, fmt.Errorf("%w: ORDERS_STORE=%q", ErrInvalidStore, cfg.Store)
	}
	switch cfg.IdempotencyStore {
	case StorePostgres, StoreMemory, StoreRedis:
	default:
		return OrdersConfig{}, fmt.Errorf("%w: IDEMPOTENCY_STORE=%q", ErrInvalidStore, cfg.IdempotencyStore)
	}

	return cfg, nil
}

// NeedsDatabase reports whether any configured store is backed by Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Orders.Store == StorePostgres || c.Orders.IdempotencyStore == StorePostgres
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", defaultLogLevel)
	otelEndpoint := getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	otelInsecure := getBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	enableTracing := getBoolEnv("OTEL_ENABLE_TRACING", true)
	enableMetrics := getBoolEnv("OTEL_ENABLE_METRICS", true)

	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      logLevel,
		OTelEndpoint:  otelEndpoint,
		OTelInsecure:  otelInsecure,
		EnableTracing: enableTracing,
		EnableMetrics: enableMetrics,
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "cafepos")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	maxConns := getEnvOrDefault("DB_MAX_CONNS", "25")
	minConns := getEnvOrDefault("DB_MIN_CONNS", "5")
	maxLifetime := getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s&pool_max_conn_lifetime=%s",
		user, password, host, port, dbName, sslMode, maxConns, minConns, maxLifetime,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}
