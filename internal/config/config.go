package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Stats        StatsConfig
	Metrics      MetricsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN selects the
// in-memory store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	ConnectRetries int
}

// RedisConfig holds Redis connection values. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	AllowRoleOnRegister   bool
}

// StatsConfig tunes the statistics endpoints.
type StatsConfig struct {
	CacheTTLSeconds     int
	NavigatorUpdatesMax int
}

// MetricsConfig toggles the OpenTelemetry stdout exporter.
type MetricsConfig struct {
	Enabled               bool
	ExportIntervalSeconds int
}

// NotificationConfig sizes the notification queue. Zero delivers
// synchronously.
type NotificationConfig struct {
	QueueSize int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "4000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("DATABASE_URL", os.Getenv("POSTGRES_DSN")),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectRetries: getEnvAsInt("POSTGRES_CONNECT_RETRIES", 5),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 7*24*60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AllowRoleOnRegister:   getEnvAsBool("AUTH_ALLOW_ROLE_ON_REGISTER", false),
		},
		Stats: StatsConfig{
			CacheTTLSeconds:     getEnvAsInt("STATS_CACHE_TTL_SECONDS", 5),
			NavigatorUpdatesMax: getEnvAsInt("STATS_NAVIGATOR_UPDATES_MAX", 100),
		},
		Metrics: MetricsConfig{
			Enabled:               getEnvAsBool("METRICS_STDOUT_ENABLED", false),
			ExportIntervalSeconds: getEnvAsInt("METRICS_EXPORT_INTERVAL_SECONDS", 60),
		},
		Notification: NotificationConfig{
			QueueSize: getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 256),
		},
	}

	if cfg.App.Env == "production" && cfg.Auth.JWTSecret == "dev-secret" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns how long computed stats stay cached. It also bounds how
// stale overdueCases can be, since due dates pass without any event.
func (s StatsConfig) CacheTTL() time.Duration {
	if s.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
