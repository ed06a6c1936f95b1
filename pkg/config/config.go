package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by every process.
type Config struct {
	HTTPPort string

	AccountsTable    string
	MovementsTable   string
	IdempotencyTable string
	TransfersTable   string
	SagasTable       string

	SagaQueueURL   string
	EventsQueueURL string

	// AccountsServiceURL selects remote legs when set.
	AccountsServiceURL string

	LegTimeout              time.Duration
	LegMaxRetries           uint64
	MaxCompensationAttempts int
	MaxResumeAttempts       int
	ResumeDelay             time.Duration
	StaleSagaAfter          time.Duration
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg := &Config{
		HTTPPort:           getenv("HTTP_PORT", "8080"),
		AccountsTable:      os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME"),
		MovementsTable:     os.Getenv("DYNAMODB_MOVEMENTS_TABLE_NAME"),
		IdempotencyTable:   os.Getenv("DYNAMODB_IDEMPOTENCY_TABLE_NAME"),
		TransfersTable:     os.Getenv("DYNAMODB_TRANSFERS_TABLE_NAME"),
		SagasTable:         os.Getenv("DYNAMODB_SAGAS_TABLE_NAME"),
		SagaQueueURL:       os.Getenv("SQS_SAGA_QUEUE_URL"),
		EventsQueueURL:     os.Getenv("SQS_EVENTS_QUEUE_URL"),
		AccountsServiceURL: os.Getenv("ACCOUNTS_SERVICE_URL"),
	}

	var err error
	if cfg.LegTimeout, err = durationEnv("LEG_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResumeDelay, err = durationEnv("SAGA_RESUME_DELAY", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.StaleSagaAfter, err = durationEnv("STALE_SAGA_AFTER", 5*time.Minute); err != nil {
		return nil, err
	}

	retries, err := intEnv("LEG_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	cfg.LegMaxRetries = uint64(retries)
	if cfg.MaxCompensationAttempts, err = intEnv("MAX_COMPENSATION_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.MaxResumeAttempts, err = intEnv("MAX_RESUME_ATTEMPTS", 10); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireTables fails unless every DynamoDB table name is set.
func (c *Config) RequireTables() error {
	tables := map[string]string{
		"DYNAMODB_ACCOUNTS_TABLE_NAME":    c.AccountsTable,
		"DYNAMODB_MOVEMENTS_TABLE_NAME":   c.MovementsTable,
		"DYNAMODB_IDEMPOTENCY_TABLE_NAME": c.IdempotencyTable,
		"DYNAMODB_TRANSFERS_TABLE_NAME":   c.TransfersTable,
		"DYNAMODB_SAGAS_TABLE_NAME":       c.SagasTable,
	}
	for name, value := range tables {
		if value == "" {
			return fmt.Errorf("%s environment variable not set", name)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
