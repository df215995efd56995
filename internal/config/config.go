package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Database    DatabaseConfig
	Backup      BackupConfig
	Ledger      LedgerConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
}

// BackupConfig holds backup file storage configuration
type BackupConfig struct {
	Path string
}

// LedgerConfig holds the business rules of the ledger
type LedgerConfig struct {
	TimeZone              string
	InvoicePrefix         string
	LegacyNumericCoercion bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

// RateLimitConfig holds HTTP rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PATH", "./data/ledger.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 1)
	viper.SetDefault("DB_BUSY_TIMEOUT", "5s")
	viper.SetDefault("STORE_OPERATION_TIMEOUT", "5s")
	viper.SetDefault("BACKUP_PATH", "./data/backups")
	viper.SetDefault("LEDGER_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("INVOICE_PREFIX", "INV")
	viper.SetDefault("LEGACY_NUMERIC_COERCION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Database: DatabaseConfig{
			Path:             viper.GetString("DB_PATH"),
			MaxOpenConns:     viper.GetInt("DB_MAX_OPEN_CONNS"),
			BusyTimeout:      viper.GetDuration("DB_BUSY_TIMEOUT"),
			OperationTimeout: viper.GetDuration("STORE_OPERATION_TIMEOUT"),
		},
		Backup: BackupConfig{
			Path: viper.GetString("BACKUP_PATH"),
		},
		Ledger: LedgerConfig{
			TimeZone:              viper.GetString("LEDGER_TIMEZONE"),
			InvoicePrefix:         viper.GetString("INVOICE_PREFIX"),
			LegacyNumericCoercion: viper.GetBool("LEGACY_NUMERIC_COERCION"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: strings.ToLower(viper.GetString("LOG_FORMAT")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}

	if c.Backup.Path == "" {
		return fmt.Errorf("backup path cannot be empty")
	}

	if _, err := time.LoadLocation(c.Ledger.TimeZone); err != nil || c.Ledger.TimeZone == "" {
		return fmt.Errorf("unknown ledger time zone %q", c.Ledger.TimeZone)
	}

	if strings.TrimSpace(c.Ledger.InvoicePrefix) == "" {
		return fmt.Errorf("invoice prefix cannot be empty")
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit must allow at least one request")
	}

	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
