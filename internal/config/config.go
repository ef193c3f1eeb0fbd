package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration
	JWTRefreshDur    time.Duration

	// Timezone used for calendar days and the 09:00 bill reminder time
	Timezone string

	// AMQP (empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Telegram (empty token disables delivery)
	TelegramBotToken string

	// Notifier
	NotifyInterval  time.Duration
	NotifyBatchSize int
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "billnudge"),
		DBPassword: getEnv("DB_PASSWORD", "billnudge"),
		DBName:     getEnv("DB_NAME", "billnudge"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		JWTExpirationDur: getEnvDuration("JWT_EXPIRES_IN", 15*time.Minute),
		JWTRefreshDur:    getEnvDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),

		Timezone: getEnv("APP_TIMEZONE", "UTC"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "billnudge"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "reminders_due"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		NotifyInterval:  getEnvDuration("NOTIFY_INTERVAL", time.Minute),
		NotifyBatchSize: getEnvInt("NOTIFY_BATCH_SIZE", 100),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Validate returns an error listing every invalid setting.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.JWTExpirationDur <= 0 {
		problems = append(problems, "JWT_EXPIRES_IN must be positive")
	}
	if c.JWTRefreshDur <= 0 {
		problems = append(problems, "JWT_REFRESH_EXPIRES_IN must be positive")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" || c.AMQPQueue == "" {
			problems = append(problems, "AMQP exchange and queue names are required when AMQP_URL is set")
		}
	}

	if c.NotifyInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid notify interval %v: must be at least 1 second", c.NotifyInterval))
	}
	if c.NotifyBatchSize < 1 || c.NotifyBatchSize > 1000 {
		problems = append(problems, fmt.Sprintf("invalid notify batch size %d: must be between 1 and 1000", c.NotifyBatchSize))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, value, defaultValue)
	}
	return defaultValue
}
