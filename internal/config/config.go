package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type Config struct {
	App struct {
		Port string
	}
	Postgres PostgresConfig
	Redis    struct {
		Addr string
	}
	Session struct {
		TTL time.Duration
	}
	Delivery struct {
		Charge            float64
		FreeDeliveryAbove float64
	}
}

// Load reads configuration from the environment. If path is non-empty, the
// .env file at that path is loaded first; a missing file is not an error.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getenv("APP_PORT", "8080")

	cfg.Postgres.Host = getenv("DB_HOST", "localhost")
	cfg.Postgres.Port = getenv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	if cfg.Postgres.User == "" {
		return nil, fmt.Errorf("config: DB_USER is required")
	}
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	if cfg.Postgres.Password == "" {
		return nil, fmt.Errorf("config: DB_PASSWORD is required")
	}
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	if cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("config: DB_NAME is required")
	}
	cfg.Postgres.SSLMode = getenv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getenv("MIGRATIONS_PATH", "migrations")

	cfg.Redis.Addr = getenv("REDIS_ADDR", "localhost:6379")

	sessionTTL, err := getenvDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Session.TTL = sessionTTL

	cfg.Delivery.Charge, err = getenvFloat("DELIVERY_CHARGE", 40)
	if err != nil {
		return nil, err
	}
	cfg.Delivery.FreeDeliveryAbove, err = getenvFloat("FREE_DELIVERY_ABOVE", 500)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return f, nil
}
