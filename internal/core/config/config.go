package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port                string
	DatabaseURL         string
	Env                 string
	NotifyURL           string
	CommissionThreshold decimal.Decimal
	WorkerInterval      int // seconds
}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on system env variables")
	}

	return &Config{
		Port:                getEnv("PORT", "3000"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		Env:                 getEnv("ENV", "development"),
		NotifyURL:           getEnv("NOTIFY_URL", ""),
		CommissionThreshold: getDecimal("COMMISSION_THRESHOLD", "5000"),
		WorkerInterval:      getInt("WORKER_INTERVAL", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("invalid decimal in env, using fallback", "key", key, "value", raw, "fallback", fallback)
		return decimal.RequireFromString(fallback)
	}
	return d
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer in env, using fallback", "key", key, "value", raw)
		return fallback
	}
	return n
}
