package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the clinic service.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	ServiceName string `mapstructure:"SERVICE_NAME"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBMaxOpen  int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdle  int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	AuthIssuer          string        `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL         string        `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience        string        `mapstructure:"AUTH_AUD"`
	PermissionsFile     string        `mapstructure:"PERMISSIONS_FILE"`
	JWKSRefreshInterval time.Duration `mapstructure:"JWKS_REFRESH_INTERVAL"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	CacheBackend string        `mapstructure:"CACHE_BACKEND"`
	CacheTTL     time.Duration `mapstructure:"CACHE_TTL"`
	RedisAddr    string        `mapstructure:"REDIS_ADDR"`
	RedisPass    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB      int           `mapstructure:"REDIS_DB"`

	OTLPEndpoint     string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracesSampler    string        `mapstructure:"OTEL_TRACES_SAMPLER"`
	MetricsInterval  time.Duration `mapstructure:"OTEL_METRICS_EXPORT_INTERVAL"`
	TelemetryEnabled bool          `mapstructure:"OTEL_ENABLED"`

	CORSOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	SlotStep        time.Duration `mapstructure:"BOOKING_SLOT_STEP"`
	MinLeadTime     time.Duration `mapstructure:"BOOKING_MIN_LEAD_TIME"`
	CancelCutoff    time.Duration `mapstructure:"BOOKING_CANCEL_CUTOFF"`
	BookingsPerHour int           `mapstructure:"BOOKING_RATE_LIMIT_PER_HOUR"`
	ClinicRetention time.Duration `mapstructure:"CLINIC_RETENTION"`
	Timezone        string        `mapstructure:"TIMEZONE"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "SERVICE_NAME",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUD", "PERMISSIONS_FILE", "JWKS_REFRESH_INTERVAL",
	"RABBITMQ_URL",
	"CACHE_BACKEND", "CACHE_TTL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_TRACES_SAMPLER", "OTEL_METRICS_EXPORT_INTERVAL", "OTEL_ENABLED",
	"ALLOWED_ORIGINS",
	"BOOKING_SLOT_STEP", "BOOKING_MIN_LEAD_TIME", "BOOKING_CANCEL_CUTOFF", "BOOKING_RATE_LIMIT_PER_HOUR",
	"CLINIC_RETENTION", "TIMEZONE",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional, but one that exists must parse
	if err := v.ReadInConfig(); err != nil && !configMissing(err) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// env values arrive as one comma-separated string
	cfg.CORSOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVICE_NAME", "clinic-service")

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("PERMISSIONS_FILE", "permissions.yml")
	v.SetDefault("JWKS_REFRESH_INTERVAL", "15m")

	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_TRACES_SAMPLER", "always_on")
	v.SetDefault("OTEL_METRICS_EXPORT_INTERVAL", "30s")
	v.SetDefault("OTEL_ENABLED", true)

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("BOOKING_SLOT_STEP", "15m")
	v.SetDefault("BOOKING_MIN_LEAD_TIME", "1h")
	v.SetDefault("BOOKING_CANCEL_CUTOFF", "24h")
	v.SetDefault("BOOKING_RATE_LIMIT_PER_HOUR", 10)
	v.SetDefault("CLINIC_RETENTION", "26280h")
	v.SetDefault("TIMEZONE", "Europe/Amsterdam")
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.DBHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.DBUser == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required database settings: %s", strings.Join(missing, ", "))
	}

	switch c.CacheBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be \"memory\" or \"redis\", got %q", c.CacheBackend)
	}

	if c.SlotStep <= 0 {
		return fmt.Errorf("BOOKING_SLOT_STEP must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the zone working hours are expressed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// DSN builds a lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
