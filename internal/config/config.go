package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the catalogue server's settings.
type Config struct {
	ServerPort       string
	DatabasePath     string
	JWTSecret        string
	RelayURL         string
	RelayTimeout     time.Duration
	SyncInterval     time.Duration
	DefaultRateLimit int
}

// RelayConfig holds the relay server's settings.
type RelayConfig struct {
	ServerPort       string
	DatabasePath     string
	StorageType      string
	LocalStoragePath string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool
}

func Load() *Config {
	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DatabasePath:     getEnv("DATABASE_PATH", "scrinia.db"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		RelayURL:         getEnv("RELAY_URL", "http://localhost:8090"),
		RelayTimeout:     getEnvDuration("RELAY_TIMEOUT", 30*time.Second),
		SyncInterval:     getEnvDuration("SYNC_INTERVAL", 5*time.Minute),
		DefaultRateLimit: getEnvInt("DEFAULT_RATE_LIMIT", 50),
	}
}

func LoadRelay() *RelayConfig {
	return &RelayConfig{
		ServerPort:       getEnv("SERVER_PORT", "8090"),
		DatabasePath:     getEnv("DATABASE_PATH", "relay.db"),
		StorageType:      getEnv("STORAGE_TYPE", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "/data/artifacts"),
		S3Endpoint:       getEnv("S3_ENDPOINT", "minio:9000"),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:      getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:         getEnv("S3_BUCKET", "artifacts"),
		S3UseSSL:         getEnvBool("S3_USE_SSL", false),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
