// Package config reads settings from the environment, optionally seeded from
// a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server holds the reference backend settings.
type Server struct {
	Port     int
	DBPath   string
	JWT      JWTConfig
	RedisURL string
	LogLevel string
	Admin    AdminSeed
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// AdminSeed is the admin account created on first start when both fields are set.
type AdminSeed struct {
	Username string
	Password string
}

// Dashboard holds the terminal client settings.
type Dashboard struct {
	APIBaseURL string
	RedisURL   string
	SessionTTL time.Duration
	Username   string
	Password   string
	LogLevel   string
}

// loadDotEnv loads files (".env" when none) into the environment. Variables
// already set win. Missing files are not an error.
func loadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("No .env file loaded, using environment variables", "error", err)
	}
}

// LoadServer reads the backend configuration.
func LoadServer(files ...string) (*Server, error) {
	loadDotEnv(files...)

	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	ttlHours, err := getInt("TOKEN_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}

	cfg := &Server{
		Port:   port,
		DBPath: getEnv("DB_PATH", "./data/village.db"),
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			TokenTTL: time.Duration(ttlHours) * time.Hour,
		},
		RedisURL: getEnv("REDIS_URL", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Admin: AdminSeed{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWT.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for push notifications")
	}
	return cfg, nil
}

// LoadDashboard reads the terminal client configuration.
func LoadDashboard(files ...string) (*Dashboard, error) {
	loadDotEnv(files...)

	ttlMinutes, err := getInt("SESSION_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	cfg := &Dashboard{
		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		RedisURL:   getEnv("REDIS_URL", ""),
		SessionTTL: time.Duration(ttlMinutes) * time.Minute,
		Username:   getEnv("DASHBOARD_USERNAME", ""),
		Password:   getEnv("DASHBOARD_PASSWORD", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for push notifications")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
