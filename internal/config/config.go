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
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Billing   BillingConfig
	RateLimit RateLimitConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
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
}

// BillingConfig points at the external payment authority.
type BillingConfig struct {
	AuthorityURL            string
	AuthorityAPIKey         string
	AuthorityTimeoutSeconds int
	CacheTTLMinutes         int
}

// RateLimitConfig tunes abuse lockout escalation.
type RateLimitConfig struct {
	RejectedReportThreshold int
	SpamFlagThreshold       int
	LockoutHours            int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "marketplace-trust"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Billing: BillingConfig{
			AuthorityURL:            getEnv("BILLING_AUTHORITY_URL", "https://api.billing.example.com"),
			AuthorityAPIKey:         os.Getenv("BILLING_AUTHORITY_API_KEY"),
			AuthorityTimeoutSeconds: getEnvAsInt("BILLING_AUTHORITY_TIMEOUT_SECONDS", 10),
			CacheTTLMinutes:         getEnvAsInt("BILLING_CACHE_TTL_MINUTES", 5),
		},
		RateLimit: RateLimitConfig{
			RejectedReportThreshold: getEnvAsInt("RATELIMIT_REJECTED_REPORT_THRESHOLD", 5),
			SpamFlagThreshold:       getEnvAsInt("RATELIMIT_SPAM_FLAG_THRESHOLD", 3),
			LockoutHours:            getEnvAsInt("RATELIMIT_LOCKOUT_HOURS", 24),
		},
	}

	if cfg.Billing.AuthorityAPIKey == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("BILLING_AUTHORITY_API_KEY is required in production")
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

// AuthorityTimeout returns the payment authority call timeout.
func (b BillingConfig) AuthorityTimeout() time.Duration {
	if b.AuthorityTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.AuthorityTimeoutSeconds) * time.Second
}

// CacheTTL returns the subscription verification cache TTL.
func (b BillingConfig) CacheTTL() time.Duration {
	if b.CacheTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(b.CacheTTLMinutes) * time.Minute
}

// LockoutDuration returns the report-abuse lockout length.
func (r RateLimitConfig) LockoutDuration() time.Duration {
	if r.LockoutHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(r.LockoutHours) * time.Hour
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
