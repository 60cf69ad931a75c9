// Package config loads the engine's deployment configuration from the
// environment, following shared/config/config.go's getEnv* helper pattern
// from the teacher.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-tunable knob the engine reads at startup.
type Config struct {
	Environment string
	AdminPort   int
	LogLevel    string

	FirebaseProjectID string
	FirestoreEmulator string

	PlayerServiceURL  string
	PlayerCacheTTL    time.Duration

	RedisHost string
	RedisPort int
	RedisDB   int

	JWTSecret string

	WorkerPoolSize int

	BroadcastMinDelay time.Duration
	BroadcastMaxDelay time.Duration

	RatingQueueDrainInterval time.Duration

	CollaboratorTimeout time.Duration

	RankedMinTimeMultiplicator time.Duration

	MetricsEnabled bool
}

// Load reads a .env file if present, then the process environment, and
// returns a populated Config with production-safe defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		AdminPort:         getEnvAsInt("ADMIN_PORT", 8080),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		FirestoreEmulator: getEnv("FIRESTORE_EMULATOR_HOST", ""),
		PlayerServiceURL:  getEnv("PLAYER_SERVICE_URL", "http://player-service:8090"),
		PlayerCacheTTL:    getEnvAsDuration("PLAYER_CACHE_TTL", 30*time.Second),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnvAsInt("REDIS_PORT", 6379),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		WorkerPoolSize:    getEnvAsInt("WORKER_POOL_SIZE", 32),

		BroadcastMinDelay: getEnvAsDuration("BROADCAST_MIN_DELAY", 250*time.Millisecond),
		BroadcastMaxDelay: getEnvAsDuration("BROADCAST_MAX_DELAY", 2*time.Second),

		RatingQueueDrainInterval: getEnvAsDuration("RATING_QUEUE_DRAIN_INTERVAL", 5*time.Second),

		CollaboratorTimeout: getEnvAsDuration("COLLABORATOR_TIMEOUT", 10*time.Second),

		RankedMinTimeMultiplicator: getEnvAsDuration("RANKED_MIN_TIME_MULTIPLICATOR", 60*time.Second),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	return cfg, nil
}

// IsProduction reports whether the engine is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// RedisAddr returns the host:port pair for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + strconv.Itoa(c.RedisPort)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
