package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("HANDOVER_CODE_TTL", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Handover.TTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "5.00", cfg.Fees.RunnerFee.String())
	assert.Equal(t, 100, cfg.OutboxBatchSize)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("HANDOVER_CODE_TTL", "10m")
	t.Setenv("HANDOVER_MAX_ATTEMPTS", "3")
	t.Setenv("PLATFORM_FEE_PERCENT", "12.5")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Minute, cfg.Handover.TTL)
	assert.Equal(t, 3, cfg.Handover.MaxAttempts)
	assert.Equal(t, "12.5", cfg.Fees.PlatformFeePercent.String())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("HANDOVER_CODE_TTL", "30s")
	t.Setenv("OUTBOX_BATCH_SIZE", "many")

	_, err := LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTBOX_BATCH_SIZE")
}
