package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_BACKEND", "QUERY_TIMEOUT", "USE_KAFKA", "KAFKA_BROKERS", "METRICS_ENABLED", "HTTP_PORT"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.UseKafka)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "8080", cfg.HTTPPort)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("QUERY_TIMEOUT", "750ms")
	t.Setenv("USE_KAFKA", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := LoadConfig()
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, 750*time.Millisecond, cfg.QueryTimeout)
	assert.True(t, cfg.UseKafka)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("QUERY_TIMEOUT", "soon")
	t.Setenv("USE_KAFKA", "maybe")

	cfg := LoadConfig()
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.UseKafka)
}
