// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production deploys
// override through the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Addr          string
	JWTSigningKey string

	// AdminTokenHash is the bcrypt hash of the admin API token protecting the
	// override and import endpoints. Empty disables those endpoints.
	AdminTokenHash string

	// ImportMaxBatch bounds one bulk-import request.
	ImportMaxBatch int

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PostgresConfig holds database connection settings. An empty URL selects the
// in-memory stores (dev and unit tests).
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds presence-cache settings. An empty URL disables the cache;
// the event ledger stays authoritative either way.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PresenceTTL  time.Duration
}

// KafkaConfig holds audit publishing settings. Empty brokers keeps audit
// events local (postgres sink only).
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:           getEnv("GARITA_ADDR", ":8080"),
		JWTSigningKey:  getEnv("GARITA_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminTokenHash: os.Getenv("GARITA_ADMIN_TOKEN_HASH"),
		ImportMaxBatch: getEnvInt("GARITA_IMPORT_MAX_BATCH", 500),
		Postgres: PostgresConfig{
			URL:          os.Getenv("GARITA_POSTGRES_URL"),
			MaxOpenConns: getEnvInt("GARITA_POSTGRES_MAX_OPEN", 25),
			MaxIdleConns: getEnvInt("GARITA_POSTGRES_MAX_IDLE", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("GARITA_REDIS_URL"),
			PoolSize:     getEnvInt("GARITA_REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("GARITA_REDIS_MIN_IDLE", 2),
			DialTimeout:  getEnvDuration("GARITA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("GARITA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("GARITA_REDIS_WRITE_TIMEOUT", 3*time.Second),
			PresenceTTL:  getEnvDuration("GARITA_PRESENCE_TTL", 15*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("GARITA_KAFKA_BROKERS")),
			Topic:   getEnv("GARITA_KAFKA_AUDIT_TOPIC", "garita.audit"),
		},
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
