package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string

	Minio MinioConfig
	Forge ForgeConfig
}

// MinioConfig configures the object store holding document binaries.
// Credentials are injected here at construction time and must never be
// logged.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL overrides the URL prefix used for public object
	// links, for deployments behind a CDN. Empty = derive from Endpoint.
	PublicBaseURL string
}

// ForgeConfig configures the Autodesk Platform Services integration.
// ClientID/ClientSecret are exchanged for short-lived bearer tokens on
// every request; no token is cached.
type ForgeConfig struct {
	ClientID     string
	ClientSecret string
	BucketKey    string
	// BaseURL points at the Forge API host. Overridable for tests.
	BaseURL string
	// PollInterval is the fixed delay between manifest polls.
	PollInterval time.Duration
	// PollMaxAttempts bounds the manifest polling loop.
	PollMaxAttempts int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("AUTH_JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		Minio: MinioConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", "documents"),
			UseSSL:        getEnv("MINIO_USE_SSL", "false") == "true",
			PublicBaseURL: getEnv("MINIO_PUBLIC_BASE_URL", ""),
		},
		Forge: ForgeConfig{
			ClientID:        getEnv("FORGE_CLIENT_ID", ""),
			ClientSecret:    getEnv("FORGE_CLIENT_SECRET", ""),
			BucketKey:       getEnv("FORGE_BUCKET_KEY", "sitedocs-bucket"),
			BaseURL:         getEnv("FORGE_BASE_URL", "https://developer.api.autodesk.com"),
			PollInterval:    getDuration("FORGE_POLL_INTERVAL", 2*time.Second),
			PollMaxAttempts: getInt("FORGE_POLL_MAX_ATTEMPTS", 150),
		},
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
