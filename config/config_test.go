package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TEST_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 1000, cfg.RateLimit.RequestsPerDay)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadRequiresJWTSecretOutsideTestMode(t *testing.T) {
	t.Setenv("TEST_MODE", "false")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("TEST_MODE", "true")
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{}
	assert.Empty(t, db.GetDSN())

	db = DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "payments",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=payments sslmode=disable",
		db.GetDSN())
}

func TestKafkaBrokersParsing(t *testing.T) {
	t.Setenv("TEST_MODE", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092 ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}
