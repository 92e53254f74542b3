package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	AuthJWTSecret string

	// Scheduling policy for the availability engine. Times are clinic
	// wall-clock; no timezone normalization is performed.
	WorkdayOpen            string // "09:00"
	WorkdayClose           string // "17:00"
	SlotMinutes            int
	DefaultDurationMinutes int
	DisabledWeekday        string // weekday name with no bookings, e.g. "Sunday"

	// External CRM (GoHighLevel-style REST API).
	CRMBaseURL    string
	CRMAPIKey     string
	CRMLocationID string
	CRMTimeout    time.Duration

	// Identity admin API used for owner login provisioning.
	AuthAdminBaseURL    string
	AuthAdminServiceKey string

	// Sync worker.
	UseMemoryQueue bool
	SyncQueueURL   string
	WorkerCount    int

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	PetImageBucket      string

	RedisAddr     string
	RedisPassword string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		WorkdayOpen:            getEnv("WORKDAY_OPEN", "09:00"),
		WorkdayClose:           getEnv("WORKDAY_CLOSE", "17:00"),
		SlotMinutes:            getEnvAsInt("SLOT_MINUTES", 30),
		DefaultDurationMinutes: getEnvAsInt("DEFAULT_DURATION_MINUTES", 30),
		DisabledWeekday:        getEnv("DISABLED_WEEKDAY", "Sunday"),

		CRMBaseURL:    getEnv("CRM_BASE_URL", "https://services.leadconnectorhq.com"),
		CRMAPIKey:     getEnv("CRM_API_KEY", ""),
		CRMLocationID: getEnv("CRM_LOCATION_ID", ""),
		CRMTimeout:    getEnvAsDuration("CRM_TIMEOUT", 5*time.Second),

		AuthAdminBaseURL:    getEnv("AUTH_ADMIN_BASE_URL", ""),
		AuthAdminServiceKey: getEnv("AUTH_ADMIN_SERVICE_KEY", ""),

		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		SyncQueueURL:   getEnv("SYNC_QUEUE_URL", ""),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		PetImageBucket:      getEnv("PET_IMAGE_BUCKET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "VetSuite Clinic"),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
