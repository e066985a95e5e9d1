package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dfagundes/huddle/internal/model"
)

// Config holds all application configuration
type Config struct {
	// Provider Accounts (in priority order)
	Accounts []model.Account

	// Provider Endpoints
	ZoomTokenURL   string
	ZoomAPIBaseURL string

	// HTTP Server Configuration
	HTTPPort         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// Timeout Configuration
	DefaultAPITimeout    time.Duration
	DefaultNotifyTimeout time.Duration

	// CORS Configuration
	CORSAllowedOrigins   string
	CORSAllowedMethods   string
	CORSAllowedHeaders   string
	CORSAllowCredentials bool
	CORSMaxAge           int

	// Notification Configuration
	NotifyWebhookURL  string
	NotifyMaxAttempts int

	// Token Refresher Configuration
	RefresherEnabled  bool
	RefresherSchedule string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// Provider accounts
		Accounts: loadAccounts(),

		// Provider endpoints (overridable for tests and mock servers)
		ZoomTokenURL:   getEnv("ZOOM_TOKEN_URL", "https://zoom.us/oauth/token"),
		ZoomAPIBaseURL: getEnv("ZOOM_API_BASE_URL", "https://api.zoom.us/v2"),

		// HTTP Server
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT_SEC", 30) * time.Second,
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT_SEC", 30) * time.Second,

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Timeouts
		DefaultAPITimeout:    getDurationEnv("DEFAULT_API_TIMEOUT_SEC", 30) * time.Second,
		DefaultNotifyTimeout: getDurationEnv("DEFAULT_NOTIFY_TIMEOUT_SEC", 10) * time.Second,

		// CORS
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS, PATCH"),
		CORSAllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "*"),
		CORSAllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAge:           getIntEnv("CORS_MAX_AGE", 3600),

		// Notifications (disabled when no webhook URL is configured)
		NotifyWebhookURL:  getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyMaxAttempts: getIntEnv("NOTIFY_MAX_ATTEMPTS", 3),

		// Token refresher
		RefresherEnabled:  getBoolEnv("TOKEN_REFRESHER_ENABLED", true),
		RefresherSchedule: getEnv("TOKEN_REFRESHER_SCHEDULE", "@every 45m"),
	}
}

// loadAccounts reads the ordered account key list and each slot's credential
// triple. The key order defines the scheduler's priority order. Accounts with
// missing credentials are kept in the registry but degrade to always-skipped.
func loadAccounts() []model.Account {
	keysStr := getEnv("ZOOM_ACCOUNT_KEYS", "default,afterHours,weekend")

	var accounts []model.Account
	for i, key := range strings.Split(keysStr, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		prefix := fmt.Sprintf("ZOOM_ACCOUNT_%d_", i+1)
		account := model.Account{
			Key:          key,
			ExternalID:   getEnv(prefix+"ID", ""),
			ClientID:     getEnv(prefix+"CLIENT_ID", ""),
			ClientSecret: getEnv(prefix+"CLIENT_SECRET", ""),
		}

		if !account.Configured() {
			log.Printf("Warning: Zoom account %q has incomplete credentials and will always be skipped", key)
		}

		accounts = append(accounts, account)
	}

	return accounts
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
		log.Printf("Warning: Invalid duration value for %s, using default %d", key, defaultValue)
	}
	return time.Duration(defaultValue)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}
