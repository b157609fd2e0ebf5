package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("EVENT_BROKER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BrokerKafka, cfg.Broker)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("EVENT_BROKER", "RabbitMQ")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, BrokerRabbitMQ, cfg.Broker)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("REFRESH_TOKEN_TTL", "soon")

	_, err := Load()

	assert.ErrorContains(t, err, "REFRESH_TOKEN_TTL")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Postgres: PostgresConfig{URL: "postgres://localhost/retail"},
			Auth:     AuthConfig{JWTSecret: strings.Repeat("s", 32)},
			Broker:   BrokerNone,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 32"},
		{"missing database", func(c *Config) { c.Postgres.URL = "" }, "DATABASE_URL"},
		{"unknown broker", func(c *Config) { c.Broker = "nats" }, "unknown EVENT_BROKER"},
		{"kafka without brokers", func(c *Config) { c.Broker = BrokerKafka }, "KAFKA_BROKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateNotifier_RequiresBroker(t *testing.T) {
	cfg := &Config{Postgres: PostgresConfig{URL: "postgres://localhost/retail"}, Broker: BrokerNone}

	assert.Error(t, cfg.ValidateNotifier())

	cfg.Broker = BrokerRabbitMQ
	cfg.RabbitMQ.URL = "amqp://localhost"
	assert.NoError(t, cfg.ValidateNotifier())
}
