package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	SMS      SMSConfig
	MinIO    MinIOConfig
	Loan     LoanConfig
	Jobs     JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
}

type SMTPConfig struct {
	Host string
	Port string
	From string
}

type SMSConfig struct {
	Provider   string // mock, twilio
	AccountSID string
	AuthToken  string
	FromNumber string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LoanConfig holds the circulation policy. Defaults match the library's
// standing rules; env overrides are for staging experiments.
type LoanConfig struct {
	BorrowPeriodDays int // due date offset for issue and renewal
	MaxRenewals      int // renewals allowed per transaction
	BorrowCap        int // max simultaneous non-returned loans per user
	FinePerDay       int // whole currency units per full day late
	DueSoonWindowHrs int // lookahead window for due-soon reminders
}

type JobConfig struct {
	SweepCron        string
	DueSoonCron      string
	OverdueCron      string
	TokenCleanupCron string
	ReminderBatch    int
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "library"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 15),  // 15 minutes
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72), // 3 days
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", "localhost"),
			Port: getEnv("SMTP_PORT", "1025"),
			From: getEnv("SMTP_FROM", "noreply@library.dev"),
		},
		SMS: SMSConfig{
			Provider:   getEnv("SMS_PROVIDER", "mock"),
			AccountSID: getEnv("SMS_ACCOUNT_SID", ""),
			AuthToken:  getEnv("SMS_AUTH_TOKEN", ""),
			FromNumber: getEnv("SMS_FROM_NUMBER", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "library"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Loan: LoanConfig{
			BorrowPeriodDays: getEnvInt("LOAN_BORROW_PERIOD_DAYS", 14),
			MaxRenewals:      getEnvInt("LOAN_MAX_RENEWALS", 3),
			BorrowCap:        getEnvInt("LOAN_BORROW_CAP", 5),
			FinePerDay:       getEnvInt("LOAN_FINE_PER_DAY", 1),
			DueSoonWindowHrs: getEnvInt("LOAN_DUE_SOON_WINDOW_HOURS", 48),
		},
		Jobs: JobConfig{
			SweepCron:        getEnv("JOB_SWEEP_CRON", "0 * * * *"),          // hourly
			DueSoonCron:      getEnv("JOB_DUE_SOON_CRON", "0 8 * * *"),       // daily 8 AM
			OverdueCron:      getEnv("JOB_OVERDUE_CRON", "0 9 * * *"),        // daily 9 AM
			TokenCleanupCron: getEnv("JOB_TOKEN_CLEANUP_CRON", "0 2 * * *"),  // daily 2 AM
			ReminderBatch:    getEnvInt("JOB_REMINDER_BATCH", 200),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config is usable
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.Loan.BorrowPeriodDays < 1 {
		return fmt.Errorf("LOAN_BORROW_PERIOD_DAYS must be at least 1")
	}
	if c.Loan.BorrowCap < 1 {
		return fmt.Errorf("LOAN_BORROW_CAP must be at least 1")
	}
	if c.Loan.MaxRenewals < 0 {
		return fmt.Errorf("LOAN_MAX_RENEWALS must not be negative")
	}

	return nil
}

// AccessExpiry returns the access token TTL as a duration
func (c *JWTConfig) AccessExpiry() time.Duration {
	return time.Duration(c.AccessTokenExpiry) * time.Minute
}

// RefreshExpiry returns the refresh token TTL as a duration
func (c *JWTConfig) RefreshExpiry() time.Duration {
	return time.Duration(c.RefreshTokenExpiry) * time.Hour
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
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
