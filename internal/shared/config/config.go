package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Session   SessionConfig
	Plaid     PlaidConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
}

// SessionConfig drives the session security monitor.
type SessionConfig struct {
	MaxInactivity     time.Duration
	Warning           time.Duration
	MaxSession        time.Duration
	MaxExtensions     int
	SlotCheckInterval time.Duration
}

// PlaidConfig holds aggregator credentials. ClientID and Secret are
// server-side secrets and must never reach a client-visible surface.
type PlaidConfig struct {
	ClientID    string
	Secret      string
	Environment string // sandbox, development or production
	WebhookURL  string
	ClientName  string
}

// Configured reports whether aggregator credentials are present.
func (p PlaidConfig) Configured() bool {
	return p.ClientID != "" && p.Secret != ""
}

// RedisConfig configures the shared session slot store. When disabled, a
// process-local store is used and duplicate-session detection only covers a
// single instance.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type SchedulerConfig struct {
	Enabled       bool
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
}

func Load() (*Config, error) {

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	// Parse session monitor configuration
	maxInactivity, err := time.ParseDuration(getEnv("SESSION_MAX_INACTIVITY", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_INACTIVITY: %w", err)
	}
	warning, err := time.ParseDuration(getEnv("SESSION_WARNING", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_WARNING: %w", err)
	}
	maxSession, err := time.ParseDuration(getEnv("SESSION_MAX_DURATION", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_DURATION: %w", err)
	}
	maxExtensions, err := strconv.Atoi(getEnv("SESSION_MAX_EXTENSIONS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_EXTENSIONS: %w", err)
	}
	slotCheck, err := time.ParseDuration(getEnv("SESSION_SLOT_CHECK_INTERVAL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_SLOT_CHECK_INTERVAL: %w", err)
	}
	if warning >= maxInactivity {
		return nil, fmt.Errorf("SESSION_WARNING must be shorter than SESSION_MAX_INACTIVITY")
	}

	// Parse scheduler configuration
	schedulerEnabled := getBoolEnv("SCHEDULER_ENABLED", true)
	schedulerTimes := strings.Split(getEnv("SCHEDULER_TIMES", "06:00,12:00,18:00"), ",")
	schedulerWorkers, err := strconv.Atoi(getEnv("SCHEDULER_WORKERS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_WORKERS: %w", err)
	}
	schedulerJobDelay, err := time.ParseDuration(getEnv("SCHEDULER_JOB_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}
	schedulerQueueSize, err := strconv.Atoi(getEnv("SCHEDULER_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_QUEUE_SIZE: %w", err)
	}
	schedulerRunOnStartup := getBoolEnv("SCHEDULER_RUN_ON_STARTUP", false)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	// Parse allowed hosts (comma-separated list)
	allowedHostsStr := getEnv("ALLOWED_HOSTS", "")
	var allowedHosts []string
	if allowedHostsStr != "" {
		for _, host := range strings.Split(allowedHostsStr, ",") {
			host = strings.TrimSpace(host)
			if host != "" {
				allowedHosts = append(allowedHosts, host)
			}
		}
	}

	plaidEnv := getEnv("PLAID_ENV", "sandbox")
	switch plaidEnv {
	case "sandbox", "development", "production":
	default:
		return nil, fmt.Errorf("invalid PLAID_ENV %q: must be sandbox, development or production", plaidEnv)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			AllowedHosts: allowedHosts,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "doughjo"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "doughjo"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Session: SessionConfig{
			MaxInactivity:     maxInactivity,
			Warning:           warning,
			MaxSession:        maxSession,
			MaxExtensions:     maxExtensions,
			SlotCheckInterval: slotCheck,
		},
		Plaid: PlaidConfig{
			ClientID:    getEnv("PLAID_CLIENT_ID", ""),
			Secret:      getEnv("PLAID_SECRET", ""),
			Environment: plaidEnv,
			WebhookURL:  getEnv("PLAID_WEBHOOK_URL", ""),
			ClientName:  getEnv("PLAID_CLIENT_NAME", "DoughJo"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			APIKey:  getEnv("LLM_API_KEY", ""),
			BaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       schedulerEnabled,
			ScheduleTimes: schedulerTimes,
			WorkerCount:   schedulerWorkers,
			JobDelay:      schedulerJobDelay,
			QueueSize:     schedulerQueueSize,
			RunOnStartup:  schedulerRunOnStartup,
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "doughjo-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("OTEL_METRICS_PORT", "9090"),
		},
	}

	// Validate required fields
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
