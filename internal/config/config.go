package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Admin
	AdminEmails string
	AdminToken  string

	// Server
	Port         string
	CORSOrigins  string
	BodyLimit    int
	RateLimitMax int

	// Redis-backed rate limiter storage; in-memory when empty.
	RedisURL string

	// Observability
	SentryDSN        string
	Environment      string
	LogRetentionDays int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "appforge"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		Port:         getEnv("PORT", "8080"),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		BodyLimit:    parseInt(getEnv("BODY_LIMIT", ""), 1024*1024),
		RateLimitMax: parseInt(getEnv("RATE_LIMIT_MAX", ""), 60),

		RedisURL: getEnv("REDIS_URL", ""),

		SentryDSN:        getEnv("SENTRY_DSN", ""),
		Environment:      getEnv("APP_ENV", "development"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", ""), 30),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
