package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Requests      RequestsConfig
	Assignment    AssignmentConfig
	Payments      PaymentsConfig
	Stats         StatsConfig
	Notifications NotificationsConfig
	Idempotency   IdempotencyConfig
	NewRelic      NewRelicConfig
	HTTP          HTTPConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
	// Instrumented switches the driver to the New Relic wrapped "nrpostgres".
	Instrumented bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig verifies access tokens minted by the identity provider.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RequestsConfig holds business rules applied when requests are created or edited.
type RequestsConfig struct {
	MinPickupLeadDays int
	PricingMinorUnits int
}

// AssignmentConfig tunes driver binding.
type AssignmentConfig struct {
	DriverPendingCapacity int
	LockEnabled           bool
	LockTTL               time.Duration
}

// PaymentsConfig is the due-date policy for created payment obligations.
type PaymentsConfig struct {
	DueAfter      time.Duration
	DefaultMethod string
}

// StatsConfig governs the aggregate cache.
type StatsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NotificationsConfig configures the outbound email worker pool.
type NotificationsConfig struct {
	Enabled     bool
	Workers     int
	Retries     int
	RetryDelay  time.Duration
	FromAddress string
}

// IdempotencyConfig controls replay of mutating requests carrying Idempotency-Key.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// NewRelicConfig toggles APM instrumentation.
type NewRelicConfig struct {
	Enabled    bool
	AppName    string
	LicenseKey string
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
		Instrumented: v.GetBool("NEW_RELIC_ENABLED"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Requests = RequestsConfig{
		MinPickupLeadDays: positiveOr(v.GetInt("MIN_PICKUP_LEAD_DAYS"), 2),
		PricingMinorUnits: v.GetInt("PRICING_MINOR_UNITS"),
	}

	cfg.Assignment = AssignmentConfig{
		DriverPendingCapacity: positiveOr(v.GetInt("DRIVER_PENDING_CAPACITY"), 10),
		LockEnabled:           v.GetBool("ASSIGNMENT_LOCK_ENABLED"),
		LockTTL:               parseDuration(v.GetString("ASSIGNMENT_LOCK_TTL"), 5*time.Second),
	}

	cfg.Payments = PaymentsConfig{
		DueAfter:      parseDuration(v.GetString("PAYMENT_DUE_AFTER"), 72*time.Hour),
		DefaultMethod: strings.ToUpper(v.GetString("PAYMENT_DEFAULT_METHOD")),
	}

	cfg.Stats = StatsConfig{
		CacheEnabled: v.GetBool("ENABLE_STATS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("STATS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:     v.GetBool("ENABLE_NOTIFICATIONS"),
		Workers:     v.GetInt("NOTIFICATION_WORKERS"),
		Retries:     v.GetInt("NOTIFICATION_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("NOTIFICATION_RETRY_DELAY"), 2*time.Second),
		FromAddress: v.GetString("NOTIFICATION_FROM"),
	}

	cfg.Idempotency = IdempotencyConfig{
		Enabled: v.GetBool("ENABLE_IDEMPOTENCY"),
		TTL:     parseDuration(v.GetString("IDEMPOTENCY_TTL"), 24*time.Hour),
	}

	cfg.NewRelic = NewRelicConfig{
		Enabled:    v.GetBool("NEW_RELIC_ENABLED"),
		AppName:    v.GetString("NEW_RELIC_APP_NAME"),
		LicenseKey: v.GetString("NEW_RELIC_LICENSE_KEY"),
	}

	cfg.HTTP = HTTPConfig{
		ReadTimeout:     parseDuration(v.GetString("HTTP_READ_TIMEOUT"), 15*time.Second),
		WriteTimeout:    parseDuration(v.GetString("HTTP_WRITE_TIMEOUT"), 30*time.Second),
		ShutdownTimeout: parseDuration(v.GetString("HTTP_SHUTDOWN_TIMEOUT"), 10*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "waste_collection")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MIN_PICKUP_LEAD_DAYS", 2)
	v.SetDefault("PRICING_MINOR_UNITS", 2)

	v.SetDefault("DRIVER_PENDING_CAPACITY", 10)
	v.SetDefault("ASSIGNMENT_LOCK_ENABLED", true)
	v.SetDefault("ASSIGNMENT_LOCK_TTL", "5s")

	v.SetDefault("PAYMENT_DUE_AFTER", "72h")
	v.SetDefault("PAYMENT_DEFAULT_METHOD", "CASH")

	v.SetDefault("ENABLE_STATS_CACHE", true)
	v.SetDefault("STATS_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("NOTIFICATION_WORKERS", 2)
	v.SetDefault("NOTIFICATION_RETRIES", 3)
	v.SetDefault("NOTIFICATION_RETRY_DELAY", "2s")
	v.SetDefault("NOTIFICATION_FROM", "no-reply@waste.local")

	v.SetDefault("ENABLE_IDEMPOTENCY", true)
	v.SetDefault("IDEMPOTENCY_TTL", "24h")

	v.SetDefault("NEW_RELIC_ENABLED", false)
	v.SetDefault("NEW_RELIC_APP_NAME", "waste-collection-api")
	v.SetDefault("NEW_RELIC_LICENSE_KEY", "")

	v.SetDefault("HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "30s")
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", "10s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// viper reports an explicit SetConfigFile that does not exist as a plain fs error.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
