package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	WebhookSecret     string
	WebhookPassphrase string
	GatewayAddress    string
	GatewaySecretKey  string

	TokenSecret   string
	TokenStrategy string
	AdminKeyHash  string

	RedisURL          string
	WebhookDedupTTL   time.Duration
	WebhookRateLimit  int
	WebhookRateWindow time.Duration

	PaymentPollEnabled  bool
	PaymentPollInterval time.Duration
	PaymentPollBatch    int
	PaymentPendingAge   time.Duration
	WorkerPoolSize      int

	SweepEnabled  bool
	SweepInterval time.Duration
	UpcomingDays  int

	CalendarFile string
	Timezone     string

	ShutdownTimeout time.Duration
	LogLevel        string
}

const (
	defaultRunAddress          = ":8080"
	defaultGatewayAddress      = "https://payments.yoco.com/api/v1"
	defaultTokenSecret         = "change-me-in-production"
	defaultTokenStrategy       = "jwt"
	defaultWebhookDedupTTL     = 24 * time.Hour
	defaultWebhookRateLimit    = 120
	defaultWebhookRateWindow   = time.Minute
	defaultPaymentPollInterval = 5 * time.Minute
	defaultPaymentPollBatch    = 32
	defaultPaymentPendingAge   = 15 * time.Minute
	defaultWorkerPoolSize      = 4
	defaultSweepInterval       = time.Hour
	defaultUpcomingDays        = 30
	defaultTimezone            = "Africa/Johannesburg"
	defaultShutdownTimeout     = 10 * time.Second
	defaultLogLevel            = "info"
	defaultEnvFile             = ".env"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	if err := loadEnvFile(os.LookupEnv); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

// loadEnvFile populates missing environment variables from ENV_FILE or ./.env.
func loadEnvFile(lookup envLookup) error {
	path := getString(lookup, "ENV_FILE", "")
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		WebhookSecret:       getString(lookup, "WEBHOOK_SECRET", ""),
		WebhookPassphrase:   getString(lookup, "WEBHOOK_PASSPHRASE", ""),
		GatewayAddress:      getString(lookup, "GATEWAY_ADDRESS", defaultGatewayAddress),
		GatewaySecretKey:    getString(lookup, "GATEWAY_SECRET_KEY", ""),
		TokenSecret:         getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		TokenStrategy:       getString(lookup, "TOKEN_STRATEGY", defaultTokenStrategy),
		AdminKeyHash:        getString(lookup, "ADMIN_KEY_HASH", ""),
		RedisURL:            getString(lookup, "REDIS_URL", ""),
		WebhookDedupTTL:     getDuration(lookup, "WEBHOOK_DEDUP_TTL", defaultWebhookDedupTTL),
		WebhookRateLimit:    getInt(lookup, "WEBHOOK_RATE_LIMIT", defaultWebhookRateLimit),
		WebhookRateWindow:   getDuration(lookup, "WEBHOOK_RATE_WINDOW", defaultWebhookRateWindow),
		PaymentPollEnabled:  getBool(lookup, "PAYMENT_POLL_ENABLED", false),
		PaymentPollInterval: getDuration(lookup, "PAYMENT_POLL_INTERVAL", defaultPaymentPollInterval),
		PaymentPollBatch:    getInt(lookup, "PAYMENT_POLL_BATCH", defaultPaymentPollBatch),
		PaymentPendingAge:   getDuration(lookup, "PAYMENT_PENDING_AGE", defaultPaymentPendingAge),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		SweepEnabled:        getBool(lookup, "SWEEP_ENABLED", false),
		SweepInterval:       getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		UpcomingDays:        getInt(lookup, "UPCOMING_DAYS", defaultUpcomingDays),
		CalendarFile:        getString(lookup, "CALENDAR_FILE", ""),
		Timezone:            getString(lookup, "TIMEZONE", defaultTimezone),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	flagSet := flag.NewFlagSet("apply4me", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var (
		dedupTTLStr        = cfg.WebhookDedupTTL.String()
		rateWindowStr      = cfg.WebhookRateWindow.String()
		pollIntervalStr    = cfg.PaymentPollInterval.String()
		pendingAgeStr      = cfg.PaymentPendingAge.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	flagSet.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	flagSet.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	flagSet.StringVar(&cfg.WebhookSecret, "webhook-secret", cfg.WebhookSecret, "Shared secret for payment callback signatures")
	flagSet.StringVar(&cfg.WebhookPassphrase, "webhook-passphrase", cfg.WebhookPassphrase, "Optional passphrase appended to signed callback params")
	flagSet.StringVar(&cfg.GatewayAddress, "g", cfg.GatewayAddress, "Payment gateway API base URL")
	flagSet.StringVar(&cfg.GatewaySecretKey, "gateway-key", cfg.GatewaySecretKey, "Payment gateway API secret key")
	flagSet.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for verifying bearer tokens")
	flagSet.StringVar(&cfg.TokenStrategy, "token-strategy", cfg.TokenStrategy, "Bearer token strategy: jwt or hmac")
	flagSet.StringVar(&cfg.AdminKeyHash, "admin-key-hash", cfg.AdminKeyHash, "Bcrypt hash of the admin API key")
	flagSet.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for callback dedup and rate limiting")
	flagSet.StringVar(&dedupTTLStr, "dedup-ttl", dedupTTLStr, "How long processed callbacks are remembered")
	flagSet.IntVar(&cfg.WebhookRateLimit, "rate-limit", cfg.WebhookRateLimit, "Webhook requests allowed per window per client")
	flagSet.StringVar(&rateWindowStr, "rate-window", rateWindowStr, "Webhook rate limit window")
	flagSet.BoolVar(&cfg.PaymentPollEnabled, "payment-poll", cfg.PaymentPollEnabled, "Poll the gateway for stale pending payments")
	flagSet.StringVar(&pollIntervalStr, "payment-poll-interval", pollIntervalStr, "Interval between pending payment polls")
	flagSet.IntVar(&cfg.PaymentPollBatch, "payment-poll-batch", cfg.PaymentPollBatch, "Maximum pending payments per poll")
	flagSet.StringVar(&pendingAgeStr, "payment-pending-age", pendingAgeStr, "Minimum age of a pending payment before polling")
	flagSet.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payment poll workers")
	flagSet.BoolVar(&cfg.SweepEnabled, "sweep", cfg.SweepEnabled, "Run the expiry sweep on a schedule")
	flagSet.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between scheduled expiry sweeps")
	flagSet.IntVar(&cfg.UpcomingDays, "upcoming-days", cfg.UpcomingDays, "Horizon in days for upcoming deadline counts")
	flagSet.StringVar(&cfg.CalendarFile, "calendar", cfg.CalendarFile, "YAML academic calendar policy")
	flagSet.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "Time zone for the academic calendar")
	flagSet.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	if err := flagSet.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.WebhookDedupTTL, err = time.ParseDuration(dedupTTLStr); err != nil {
		return nil, fmt.Errorf("invalid dedup ttl: %w", err)
	}
	if cfg.WebhookRateWindow, err = time.ParseDuration(rateWindowStr); err != nil {
		return nil, fmt.Errorf("invalid rate window: %w", err)
	}
	if cfg.PaymentPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid payment poll interval: %w", err)
	}
	if cfg.PaymentPendingAge, err = time.ParseDuration(pendingAgeStr); err != nil {
		return nil, fmt.Errorf("invalid payment pending age: %w", err)
	}
	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secret, err := readSecretFile(lookup, "WEBHOOK_SECRET_FILE"); err != nil {
		return nil, err
	} else if secret != "" {
		cfg.WebhookSecret = secret
	}
	if secret, err := readSecretFile(lookup, "TOKEN_SECRET_FILE"); err != nil {
		return nil, err
	} else if secret != "" {
		cfg.TokenSecret = secret
	}

	normalize(cfg)

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("webhook secret must be provided")
	}
	switch cfg.TokenStrategy {
	case "jwt", "hmac":
	default:
		return nil, fmt.Errorf("unsupported token strategy %q", cfg.TokenStrategy)
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.TokenStrategy = strings.ToLower(strings.TrimSpace(cfg.TokenStrategy))

	if cfg.WebhookDedupTTL <= 0 {
		cfg.WebhookDedupTTL = defaultWebhookDedupTTL
	}
	if cfg.WebhookRateLimit <= 0 {
		cfg.WebhookRateLimit = defaultWebhookRateLimit
	}
	if cfg.WebhookRateWindow <= 0 {
		cfg.WebhookRateWindow = defaultWebhookRateWindow
	}
	if cfg.PaymentPollInterval <= 0 {
		cfg.PaymentPollInterval = defaultPaymentPollInterval
	}
	if cfg.PaymentPollBatch <= 0 {
		cfg.PaymentPollBatch = defaultPaymentPollBatch
	}
	if cfg.PaymentPendingAge <= 0 {
		cfg.PaymentPendingAge = defaultPaymentPendingAge
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = defaultUpcomingDays
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
}

func readSecretFile(lookup envLookup, key string) (string, error) {
	path, ok := lookup(key)
	if !ok || path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(key), err)
	}
	return strings.TrimSpace(string(content)), nil
}

// Location resolves the configured calendar time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
