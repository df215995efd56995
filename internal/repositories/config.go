package repositories

import (
	"errors"
	"time"
)

// Config represents record store configuration
type Config struct {
	// OperationTimeout bounds every single store call
	OperationTimeout time.Duration `json:"operation_timeout" yaml:"operation_timeout"`

	// SlowQueryThreshold logs queries slower than this at Warn level
	SlowQueryThreshold time.Duration `json:"slow_query_threshold" yaml:"slow_query_threshold"`
}

// DefaultConfig returns a default store configuration
func DefaultConfig() *Config {
	return &Config{
		OperationTimeout:   5 * time.Second,
		SlowQueryThreshold: 500 * time.Millisecond,
	}
}

// Validate validates the store configuration
func (c *Config) Validate() error {
	if c.OperationTimeout <= 0 {
		return errors.New("operation timeout must be greater than 0")
	}
	if c.SlowQueryThreshold < 0 {
		return errors.New("slow query threshold cannot be negative")
	}
	return nil
}
