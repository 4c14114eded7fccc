package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the application.
// Values are read from environment variables; cmd/main.go loads a .env
// file before calling Load.
type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	// TelegramToken enables the offline-message notifier when set.
	TelegramToken string
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "travelbay"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "travelbay"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			log.Printf("Warning: invalid REDIS_DB %q, using 0", raw)
		} else {
			cfg.RedisDB = db
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.TelegramToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, offline notifications disabled")
	}

	return cfg, nil
}

// DSN builds the PostgreSQL connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
