package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port    string `yaml:"port"`
	BaseURL string `yaml:"base_url"`

	// Database configuration
	DBType            string `yaml:"db_type"` // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string `yaml:"db_host"`
	DBPort            string `yaml:"db_port"`
	DBDatabase        string `yaml:"db_database"`
	DBUser            string `yaml:"db_user"`
	DBPassword        string `yaml:"db_password"`
	DBConnectionLimit int    `yaml:"db_connection_limit"`
	DBLogLevel        string `yaml:"db_log_level"`

	// Search index configuration, empty SearchURL disables indexing
	SearchURL      string `yaml:"search_url"`
	SearchUsername string `yaml:"search_username"`
	SearchPassword string `yaml:"search_password"`
	SearchPrefix   string `yaml:"search_prefix"`

	// Auth configuration
	SecretKey     string        `yaml:"secret_key"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	ResetTokenTTL time.Duration `yaml:"reset_token_ttl"`
	AdminEmails   []string      `yaml:"admin_emails"`

	// Application behavior
	PostsPerPage    int           `yaml:"posts_per_page"`
	WebCheckTimeout time.Duration `yaml:"web_check_timeout"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from environment variables, then overlays the
// YAML file at path when path is not empty.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:3000"),
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		DBLogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		SearchURL:         getEnv("SEARCH_URL", ""),
		SearchUsername:    getEnv("SEARCH_USERNAME", ""),
		SearchPassword:    getEnv("SEARCH_PASSWORD", ""),
		SearchPrefix:      getEnv("SEARCH_PREFIX", ""),
		SecretKey:         getEnv("SECRET_KEY", ""),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		ResetTokenTTL:     getEnvAsDuration("RESET_TOKEN_TTL", 300*time.Second),
		AdminEmails:       getEnvAsList("ADMIN_EMAILS"),
		PostsPerPage:      getEnvAsInt("POSTS_PER_PAGE", 10),
		WebCheckTimeout:   getEnvAsDuration("WEB_CHECK_TIMEOUT", 5*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	if cfg.PostsPerPage <= 0 {
		return nil, fmt.Errorf("POSTS_PER_PAGE must be positive")
	}

	return cfg, nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS
func (c *Config) IsAdminEmail(email string) bool {
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("5m") or a number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated environment variable
func getEnvAsList(key string) []string {
	var list []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
