package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process configuration, sourced from the environment.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	MetricsPort string

	// StoreDriver selects the document store backend: mongo, postgres or
	// memory.
	StoreDriver     string
	MongoURI        string
	MongoDatabase   string
	PostgresConnStr string

	// Bootstrap volume. Both are externally configurable; re-running the
	// bootstrap wipes the store first, so the totals stay exact.
	SeedUsers         int
	SeedTweetsPerUser int

	// Per-operation store hardening.
	StoreTimeout        time.Duration
	StoreRetryAttempts  int
	StoreRetryBaseDelay time.Duration
}

// Load reads configuration from the environment, preceded by an optional
// .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		StoreDriver:     getEnv("STORE_DRIVER", "mongo"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "microblog"),
		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),

		SeedUsers:         getEnvInt("SEED_USERS", 10),
		SeedTweetsPerUser: getEnvInt("SEED_TWEETS_PER_USER", 100),

		StoreTimeout:        getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		StoreRetryAttempts:  getEnvInt("STORE_RETRY_ATTEMPTS", 3),
		StoreRetryBaseDelay: getEnvDuration("STORE_RETRY_BASE_DELAY", 100*time.Millisecond),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}
