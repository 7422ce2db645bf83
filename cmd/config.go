package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	LogLevel string
	AppEnv   string

	// KafkaBrokers is empty when Kafka publishing is disabled.
	KafkaBrokers          []string
	KafkaOrderEventsTopic string

	Handover handover.Policy
	Fees     order.FeeSchedule

	OutboxBatchSize    int
	ChallengeRetention time.Duration
	OutboxRetention    time.Duration
	EventBuffer        int
}

// DSN is the libpq connection string for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables win over it.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var errList []error
	collect := func(err error) {
		if err != nil {
			errList = append(errList, err)
		}
	}

	cfg := Config{
		HTTPPort:              env("HTTP_PORT", "8080"),
		DBHost:                env("DB_HOST", "localhost"),
		DBPort:                env("DB_PORT", "5432"),
		DBUser:                env("DB_USER", "postgres"),
		DBPassword:            env("DB_PASSWORD", ""),
		DBName:                env("DB_NAME", "kayayo"),
		DBSslMode:             env("DB_SSLMODE", "disable"),
		LogLevel:              env("LOG_LEVEL", "info"),
		AppEnv:                env("APP_ENV", "local"),
		KafkaBrokers:          splitList(env("KAFKA_BROKERS", "")),
		KafkaOrderEventsTopic: env("KAFKA_ORDER_EVENTS_TOPIC", "order.events"),
	}

	var err error
	cfg.Handover = handover.DefaultPolicy()
	cfg.Handover.TTL, err = envDuration("HANDOVER_CODE_TTL", handover.DefaultTTL)
	collect(err)
	cfg.Handover.MaxAttempts, err = envInt("HANDOVER_MAX_ATTEMPTS", handover.DefaultMaxAttempts)
	collect(err)
	collect(cfg.Handover.Validate())

	cfg.Fees.RunnerFee, err = envMoney("RUNNER_FEE", "5.00")
	collect(err)
	cfg.Fees.DeliveryFee, err = envMoney("DELIVERY_FEE", "10.00")
	collect(err)
	cfg.Fees.PlatformFeePercent, err = decimal.NewFromString(env("PLATFORM_FEE_PERCENT", "10"))
	if err != nil {
		collect(fmt.Errorf("PLATFORM_FEE_PERCENT: %w", err))
	}

	cfg.OutboxBatchSize, err = envInt("OUTBOX_BATCH_SIZE", 100)
	collect(err)
	cfg.ChallengeRetention, err = envDuration("CHALLENGE_RETENTION", 24*time.Hour)
	collect(err)
	cfg.OutboxRetention, err = envDuration("OUTBOX_RETENTION", 7*24*time.Hour)
	collect(err)
	cfg.EventBuffer, err = envInt("EVENT_STREAM_BUFFER", 32)
	collect(err)

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaOrderEventsTopic == "" {
		collect(errors.New("KAFKA_ORDER_EVENTS_TOPIC is required when KAFKA_BROKERS is set"))
	}

	if err = errors.Join(errList...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envMoney(key, fallback string) (kernel.Money, error) {
	v, err := kernel.MoneyFromString(env(key, fallback))
	if err != nil {
		return kernel.Money{}, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
