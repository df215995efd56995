package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// ConnectionConfig holds database connection configuration
type ConnectionConfig struct {
	DatabasePath    string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
	Logger          *logrus.Logger
}

// DefaultConnectionConfig returns a default configuration
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		DatabasePath:    "./data/ledger.db",
		MaxOpenConns:    1, // SQLite works best with single connection
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		BusyTimeout:     5 * time.Second,
		Logger:          logrus.New(),
	}
}

// BuildDSN builds a SQLite DSN with WAL journaling and a busy timeout.
// Foreign key enforcement is left off.
func BuildDSN(path string, busyTimeout time.Duration) string {
	options := []string{"_journal_mode=WAL"}
	if busyTimeout > 0 {
		options = append(options, fmt.Sprintf("_busy_timeout=%d", busyTimeout.Milliseconds()))
	}
	return fmt.Sprintf("%s?%s", path, strings.Join(options, "&"))
}

// Open opens and pings a database without running migrations
func Open(config *ConnectionConfig) (*sql.DB, error) {
	dbPath, err := filepath.Abs(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", BuildDSN(dbPath, config.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	return db, nil
}

// InitializeDatabase opens the database and applies pending migrations
func InitializeDatabase(config *ConnectionConfig) (*sql.DB, error) {
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}
	logger.WithField("db_path", config.DatabasePath).Info("Initializing database")

	db, err := Open(config)
	if err != nil {
		return nil, err
	}

	if err := NewMigrationManager(db, logger).RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database initialized successfully")
	return db, nil
}

// ConnectionManager owns the lifecycle of the ledger database
type ConnectionManager struct {
	config *ConnectionConfig
	db     *sql.DB
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(config *ConnectionConfig) *ConnectionManager {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &ConnectionManager{
		config: config,
	}
}

// Connect establishes a database connection and runs migrations
func (cm *ConnectionManager) Connect() error {
	if cm.db != nil {
		return fmt.Errorf("database connection already established")
	}

	db, err := InitializeDatabase(cm.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	cm.db = db
	cm.config.Logger.WithField("db_path", cm.config.DatabasePath).Info("Database connection established")
	return nil
}

// GetDB returns the database connection
func (cm *ConnectionManager) GetDB() *sql.DB {
	return cm.db
}

// Close closes the database connection
func (cm *ConnectionManager) Close() error {
	if cm.db == nil {
		return nil
	}

	err := cm.db.Close()
	cm.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	cm.config.Logger.Info("Database connection closed")
	return nil
}

// HealthCheck pings the database and runs a trivial query
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if cm.db == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := cm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := cm.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("test query returned unexpected result: %d", result)
	}

	return nil
}

// CreateSnapshot writes a consistent copy of the database file to path
func (cm *ConnectionManager) CreateSnapshot(ctx context.Context, path string) error {
	if cm.db == nil {
		return fmt.Errorf("database connection not established")
	}
	return CreateSnapshot(ctx, cm.db, path, cm.config.Logger)
}

// CreateSnapshot copies a live database to path with VACUUM INTO
func CreateSnapshot(ctx context.Context, db *sql.DB, path string, logger *logrus.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("failed to create SQLite snapshot: %w", err)
	}

	if logger != nil {
		logger.WithField("snapshot_path", path).Info("SQLite snapshot created")
	}
	return nil
}
