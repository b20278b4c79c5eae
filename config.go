package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all environment variables for the service.
type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string
	TokenTTL  time.Duration

	RedisURL string

	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig reads configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("POSTGRES_HOST", "localhost"),
		DBPort:     getEnv("POSTGRES_PORT", "5432"),
		DBUser:     getEnv("POSTGRES_USER", "postgres"),
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
		DBName:     getEnv("POSTGRES_DB", "shop"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  30 * time.Minute,

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		KafkaTopic: getEnv("KAFKA_ORDER_TOPIC", "order.created"),
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}

	// Kafka is optional: no brokers means no event publishing.
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
