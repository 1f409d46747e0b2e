package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the runner and the agent
type Config struct {
	// Runner settings
	TasksFile  string
	LogDir     string
	MaxRetries int

	// Reports and backups
	ReportDir   string
	BackupSrc   string
	StorageType string // "local" or "s3"
	BackupDir   string

	// S3 backup destination
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// Email
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	EmailTo      []string

	// Housekeeping
	RetentionDays       int
	WatchedServices     []string
	PruneDanglingImages bool

	// Result events
	NATSURL string

	// Agent server settings
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Agent authentication
	APIKey    string
	JWTSecret string

	// Agent security
	AllowedOrigins []string
	RateLimitRPS   int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(getEnvFile())

	base := baseDir()

	cfg := &Config{
		TasksFile:  getEnv("TASKS_FILE", filepath.Join(base, "tasks.json")),
		LogDir:     getEnv("LOG_DIR", filepath.Join(base, "logs")),
		MaxRetries: getEnvInt("MAX_RETRIES", 2),

		ReportDir:   getEnv("REPORT_DIR", filepath.Join(base, "reports")),
		BackupSrc:   getEnv("BACKUP_SRC", base),
		StorageType: getEnv("BACKUP_DEST_TYPE", "local"),
		BackupDir:   getEnv("BACKUP_DIR", filepath.Join(base, "backups")),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "taskrunner@localhost"),
		EmailTo:      getEnvSlice("EMAIL_TO", nil),

		RetentionDays: getEnvInt("CLEANUP_RETENTION_DAYS", 14),
		WatchedServices: getEnvSlice("WATCHED_SERVICES", []string{
			"docker",
			"nginx",
			"ssh",
		}),
		PruneDanglingImages: getEnvBool("DOCKER_PRUNE_DANGLING", true),

		NATSURL: getEnv("NATS_URL", ""),

		Port:         getEnvInt("PORT", 8091),
		Host:         getEnv("HOST", "0.0.0.0"),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT_SECONDS", 300)) * time.Second,

		APIKey:    getEnv("API_KEY", ""),
		JWTSecret: getEnv("JWT_SECRET", ""),

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 100),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("MAX_RETRIES must not be negative, got %d", cfg.MaxRetries)
	}

	if cfg.StorageType != "local" && cfg.StorageType != "s3" {
		return nil, fmt.Errorf("BACKUP_DEST_TYPE must be 'local' or 's3', got '%s'", cfg.StorageType)
	}

	if cfg.JWTSecret == "" {
		// Use API key as fallback for JWT secret
		cfg.JWTSecret = cfg.APIKey
	}

	return cfg, nil
}

// baseDir returns the directory the runner resolves relative paths against:
// the current directory if it holds a tasks.json, otherwise the executable's
// directory.
func baseDir() string {
	if _, err := os.Stat("tasks.json"); err == nil {
		return "."
	}

	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// getEnvFile returns the path to the .env file
func getEnvFile() string {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return envFile
	}

	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}

	exe, err := os.Executable()
	if err == nil {
		envPath := filepath.Join(filepath.Dir(exe), ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	return ".env"
}

// LoadWithDefaults loads config with defaults for testing
func LoadWithDefaults() *Config {
	return &Config{
		TasksFile:  "tasks.json",
		LogDir:     "logs",
		MaxRetries: 2,

		ReportDir:   "reports",
		BackupSrc:   ".",
		StorageType: "local",
		BackupDir:   "backups",

		SMTPPort:  587,
		EmailFrom: "taskrunner@localhost",

		RetentionDays:       14,
		WatchedServices:     []string{"test-service"},
		PruneDanglingImages: true,

		Port:         8091,
		Host:         "0.0.0.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,

		APIKey:    "test-api-key",
		JWTSecret: "test-jwt-secret",

		AllowedOrigins: []string{"*"},
		RateLimitRPS:   100,

		LogLevel: "info",
	}
}

// Addr returns the agent server address string
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
