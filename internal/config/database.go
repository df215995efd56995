package config

import (
	"fmt"
	"time"

	"crm-ledger/internal/database"
	"crm-ledger/internal/repositories"

	"github.com/sirupsen/logrus"
)

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path             string
	MaxOpenConns     int
	BusyTimeout      time.Duration
	OperationTimeout time.Duration
}

// Validate validates the database configuration
func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max open connections must be at least 1")
	}

	if c.BusyTimeout <= 0 {
		return fmt.Errorf("busy timeout must be greater than 0")
	}

	if c.OperationTimeout <= 0 {
		return fmt.Errorf("store operation timeout must be greater than 0")
	}

	return nil
}

// ToConnectionConfig converts DatabaseConfig to database.ConnectionConfig
func (c *DatabaseConfig) ToConnectionConfig(logger *logrus.Logger) *database.ConnectionConfig {
	conn := database.DefaultConnectionConfig()
	conn.DatabasePath = c.Path
	conn.MaxOpenConns = c.MaxOpenConns
	conn.MaxIdleConns = c.MaxOpenConns
	conn.BusyTimeout = c.BusyTimeout
	conn.Logger = logger
	return conn
}

// ToStoreConfig converts DatabaseConfig to the record store configuration
func (c *DatabaseConfig) ToStoreConfig() *repositories.Config {
	store := repositories.DefaultConfig()
	store.OperationTimeout = c.OperationTimeout
	return store
}
