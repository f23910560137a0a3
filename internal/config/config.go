package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=car_rental port=5432 sslmode=disable"

type Config struct {
	AppEnv   string
	HTTPPort string
	LogLevel string

	DatabaseDSN    string
	DBMaxIdleConns int
	DBMaxOpenConns int
	DBLogLevel     string
	AutoMigrate    bool

	JWTSecret  string
	SessionTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins string
	FontPath    string // TTF used by the PDF reports
	Timezone    string
}

// Load reads the configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
		DBLogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		AutoMigrate:    getEnvAsBool("AUTO_MIGRATE", false),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getEnvAsDuration("SESSION_TTL", 12*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		FontPath:    getEnv("FONT_PATH", "static/fonts/DejaVuSans.ttf"),
		Timezone:    getEnv("TIMEZONE", "Europe/Moscow"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Warnings lists settings that are fine for development but not for production.
func (c *Config) Warnings() []string {
	var w []string
	if c.DatabaseDSN == defaultDSN {
		w = append(w, "DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		w = append(w, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	if c.RedisAddr == "" {
		w = append(w, "REDIS_ADDR is not set, sessions are kept in the database")
	}
	if c.AutoMigrate {
		w = append(w, "AUTO_MIGRATE is enabled, the schema should be managed externally in production")
	}
	return w
}

// Location returns the business time zone used for "today" computations.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Origins splits CORS_ALLOWED_ORIGINS into trimmed entries.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return def
}
