package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	BcryptCost    int

	Redis RedisConfig
	Kafka KafkaConfig
}

// RedisConfig holds connection settings for the age band cache.
// An empty URL disables Redis entirely; the band catalog then serves
// straight from Postgres or the built-in fallback table.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit event stream.
// Empty Brokers disables Kafka; audit events then stay in Postgres only.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// BandCacheTTL bounds staleness of the cached age band table.
var BandCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CDC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("CDC_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	bcryptCost := 0
	if v := os.Getenv("CDC_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			bcryptCost = n
		}
	}

	var brokers []string
	if v := os.Getenv("CDC_KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("CDC_KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "cdc.audit.events"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("CDC_DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		BcryptCost:    bcryptCost,
		Redis: RedisConfig{
			URL:          os.Getenv("CDC_REDIS_URL"),
			PoolSize:     envInt("CDC_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CDC_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("CDC_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CDC_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CDC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
