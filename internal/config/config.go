package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the limit order daemon.
type Config struct {
	Port            int
	LogLevel        string
	DBPath          string
	VenueURL        string
	VenueTimeout    time.Duration
	WebhookTimeout  time.Duration
	SweepInterval   time.Duration
	ContextTTL      time.Duration
	MaxSlippageBP   uint64
	ExecutionFeeBPS uint64
	ExecutorID      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	dbPath := getStr("DB_PATH", "data/limitd")

	venueURL := getStr("VENUE_URL", "http://localhost:9090")

	venueTimeout, err := getDuration("VENUE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid VENUE_TIMEOUT: %w", err)
	}

	webhookTimeout, err := getDuration("WEBHOOK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}

	sweepInterval, err := getDuration("SWEEP_INTERVAL", 1*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}

	contextTTL, err := getDuration("CONTEXT_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid CONTEXT_TTL: %w", err)
	}

	maxSlippageBP, err := getUint64("MAX_SLIPPAGE_BP", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_SLIPPAGE_BP: %w", err)
	}
	if maxSlippageBP > 10000 {
		return nil, fmt.Errorf("invalid MAX_SLIPPAGE_BP: %d exceeds 10000", maxSlippageBP)
	}

	executionFeeBPS, err := getUint64("EXECUTION_FEE_BPS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid EXECUTION_FEE_BPS: %w", err)
	}

	executorID := getStr("EXECUTOR_ID", "executor")

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		DBPath:          dbPath,
		VenueURL:        venueURL,
		VenueTimeout:    venueTimeout,
		WebhookTimeout:  webhookTimeout,
		SweepInterval:   sweepInterval,
		ContextTTL:      contextTTL,
		MaxSlippageBP:   maxSlippageBP,
		ExecutionFeeBPS: executionFeeBPS,
		ExecutorID:      executorID,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getUint64(key string, defaultVal uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseUint(v, 10, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
