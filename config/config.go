package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	CatalogIndexURL string
	CacheDir        string

	HTTPTimeoutSec int
	MaxRetries     int
	MaxConcurrency int
	RateLimitMs    int

	CSVExportPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		CatalogIndexURL: getEnv("CATALOG_INDEX_URL", "https://insideairbnb.com/get-the-data/"),
		CacheDir:        getEnv("SNAPSHOT_CACHE_DIR", "./cache/snapshots"),

		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 60),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 500),

		CSVExportPath: getEnv("CSV_EXPORT_PATH", "./output/scored_listings.csv"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "prophet"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "prophet123"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
