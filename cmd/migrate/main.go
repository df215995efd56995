package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"crm-ledger/internal/database"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		dbPath      = flag.String("db", "./data/ledger.db", "Database file path")
		action      = flag.String("action", "up", "Migration action: up, down, status, validate")
		snapshotDir = flag.String("snapshot-dir", "./data/snapshots", "Directory for the snapshot taken before a rollback")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logger
	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	config := database.DefaultConnectionConfig()
	config.DatabasePath = absDBPath
	config.Logger = logger

	// Handle different actions
	switch *action {
	case "up":
		err = runMigrationsUp(config)
	case "down":
		err = runMigrationsDown(config, *snapshotDir)
	case "status":
		err = showMigrationStatus(config)
	case "validate":
		err = validateSchema(config)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate")
	}
	if err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", *action)
	}

	logger.Info("Migration tool completed successfully")
}

func runMigrationsUp(config *database.ConnectionConfig) error {
	cm := database.NewConnectionManager(config)
	if err := cm.Connect(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return cm.Close()
}

func runMigrationsDown(config *database.ConnectionConfig, snapshotDir string) error {
	db, err := database.Open(config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	snapshot := filepath.Join(snapshotDir, fmt.Sprintf("ledger_%s.db", time.Now().Format("20060102-150405")))
	if err := database.CreateSnapshot(context.Background(), db, snapshot, config.Logger); err != nil {
		return fmt.Errorf("refusing to roll back without a snapshot: %w", err)
	}

	return database.NewMigrationManager(db, config.Logger).RollbackMigration()
}

func showMigrationStatus(config *database.ConnectionConfig) error {
	db, err := database.Open(config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	status, err := database.NewMigrationManager(db, config.Logger).GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)

	return nil
}

func validateSchema(config *database.ConnectionConfig) error {
	db, err := database.Open(config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.NewMigrationManager(db, config.Logger).ValidateSchema(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	fmt.Println("Schema validation passed successfully")
	return nil
}
