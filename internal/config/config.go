package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds all runtime configuration, loaded from the environment.
// Secrets (SMTP credentials, JWT key) are never embedded in source.
type Config struct {
	Port           int
	AllowedOrigins string

	SMTP SMTPConfig

	// Base URL of the school data store (identity + credential REST API).
	SchoolStoreURL     string
	SchoolStoreTimeout time.Duration

	JWTSecret string

	ChallengeTTL  time.Duration
	ResetTokenTTL time.Duration
	MaxAttempts   int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func Load() *Config {
	return &Config{
		Port:           getEnvInt("PORT", 8080),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},

		SchoolStoreURL:     getEnv("SCHOOL_STORE_URL", "http://localhost:3000"),
		SchoolStoreTimeout: getEnvDuration("SCHOOL_STORE_TIMEOUT", 10*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),

		ChallengeTTL:  getEnvDuration("OTP_TTL", 5*time.Minute),
		ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", 10*time.Minute),
		MaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
