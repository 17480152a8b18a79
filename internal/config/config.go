package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	EventTopic   string

	// API Configuration
	APIPort string
	APIHost string

	// Remote recommendation API
	StaccAPIURL string

	// Log buffer
	LogBufferPath string

	// Public URL of this service, used to build sync callback URLs
	// registered with the remote API on credential setup.
	PublicURL string

	// Storefront site URL stamped on every outgoing event payload.
	SiteURL string

	// Dispatch timeouts
	DispatchTimeout time.Duration
	SyncTimeout     time.Duration
	RecsTimeout     time.Duration
	ProbeTimeout    time.Duration

	// Environment
	Env      string
	LogLevel string
	Version  string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:     getEnv("DATABASE_URL", "sqlite://recommender.db"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", "localhost:9092"),
		EventTopic:      getEnv("EVENT_TOPIC", "storefront-events"),
		APIPort:         getEnv("API_PORT", "8080"),
		APIHost:         getEnv("API_HOST", "0.0.0.0"),
		StaccAPIURL:     getEnv("STACC_API_URL", "https://api.stacc.ee/v2"),
		LogBufferPath:   getEnv("LOG_BUFFER_PATH", "logs/StaccDefault.log"),
		PublicURL:       getEnv("PUBLIC_URL", "http://localhost:8080"),
		SiteURL:         getEnv("SITE_URL", "http://localhost"),
		DispatchTimeout: getEnvAsMillis("DISPATCH_TIMEOUT_MS", 5000),
		SyncTimeout:     getEnvAsMillis("SYNC_TIMEOUT_MS", 10000),
		RecsTimeout:     getEnvAsMillis("RECS_TIMEOUT_MS", 3000),
		ProbeTimeout:    getEnvAsMillis("PROBE_TIMEOUT_MS", 1000),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Version:         getEnv("EXTENSION_VERSION", "1.0.0"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	ms := defaultValue
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			ms = intValue
		}
	}
	return time.Duration(ms) * time.Millisecond
}
