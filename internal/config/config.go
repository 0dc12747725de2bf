package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	JournalEnabled bool

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	TokenSecret          string
	TokenTTL             time.Duration
	RateLimitPerMinute   int

	ContentDir string
	// FeedbackDelay overrides every game's delay when set
	FeedbackDelay *time.Duration

	AWSRegion     string
	SESFromEmail  string
	SESFromName   string
	ReportEmailTo string

	LogLevel  string
	LogFormat string
	Debug     bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	cfg := &Config{
		ServerPort:           getEnv("PORT", "8080"),
		DatabaseType:         strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabasePath:         getEnv("DB_PATH", "./wordquest.db"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JournalEnabled:       getEnvBool("JOURNAL_ENABLED", true),
		SessionTTL:           getEnvDuration("SESSION_TTL", 2*time.Hour),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		TokenSecret:          os.Getenv("TOKEN_SECRET"),
		TokenTTL:             getEnvDuration("TOKEN_TTL", 12*time.Hour),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		ContentDir:           os.Getenv("CONTENT_DIR"),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:         os.Getenv("SES_FROM_EMAIL"),
		SESFromName:          getEnv("SES_FROM_NAME", "WordQuest"),
		ReportEmailTo:        os.Getenv("REPORT_EMAIL_TO"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		Debug:                getEnvBool("DEBUG", false),
	}

	if v := os.Getenv("FEEDBACK_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			d := time.Duration(ms) * time.Millisecond
			cfg.FeedbackDelay = &d
		}
	}

	return cfg
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90m", "2h")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
