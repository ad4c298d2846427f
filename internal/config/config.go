package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	ShopifyAPIVersion string

	StripeAPIKey  string
	StripeBaseURL string

	FXProvider string
	FXBaseURL  string

	SyncWorkers  int
	SyncPacingMS int
	SyncDaysBack int

	HTTPPort string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "shipguard"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "shipguard"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		ShopifyAPIVersion: getenv("SHOPIFY_API_VERSION", "2024-01"),

		StripeAPIKey:  strings.TrimSpace(getenv("STRIPE_API_KEY", "")),
		StripeBaseURL: getenv("STRIPE_BASE_URL", "https://api.stripe.com"),

		FXProvider: strings.ToLower(getenv("FX_PROVIDER", "static")),
		FXBaseURL:  getenv("FX_BASE_URL", "https://open.er-api.com/v6"),

		SyncWorkers:  getenvInt("SYNC_WORKERS", 4),
		SyncPacingMS: getenvInt("SYNC_PACING_MS", 500),
		SyncDaysBack: getenvInt("SYNC_DAYS_BACK", 7),

		HTTPPort: getenv("HTTP_PORT", "8080"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
