package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crm-ledger/internal/adapters/storage"
	"crm-ledger/internal/backup"
	"crm-ledger/internal/config"
	"crm-ledger/internal/database"
	"crm-ledger/internal/handlers"
	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories/sqlite"
	"crm-ledger/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Services *services.ServiceContainer
	Store    *sqlite.Store
	Files    storage.FileStorage
	Codec    *backup.Codec
	Archive  *backup.Archive

	// Internal dependencies
	conn *database.ConnectionManager
}

// NewContainer wires the database, record store, services and backup
// archive from cfg
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	clock, err := models.LoadClock(cfg.Ledger.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger clock: %w", err)
	}

	conn := database.NewConnectionManager(cfg.Database.ToConnectionConfig(logger))
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := sqlite.NewStore(conn.GetDB(), cfg.Database.ToStoreConfig(), logger)

	serviceContainer, err := services.NewServiceContainer(store, &services.ServiceConfig{
		Clock:                 clock,
		InvoicePrefix:         cfg.Ledger.InvoicePrefix,
		LegacyNumericCoercion: cfg.Ledger.LegacyNumericCoercion,
		Logger:                logger,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}

	files, err := storage.CreateFromConfig(&storage.StorageConfig{
		Type:     string(storage.StorageTypeLocal),
		BasePath: cfg.Backup.Path,
	}, logger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create backup storage: %w", err)
	}

	codec := backup.NewCodec(store, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Services: serviceContainer,
		Store:    store,
		Files:    files,
		Codec:    codec,
		Archive:  backup.NewArchive(codec, files, clock, logger),
		conn:     conn,
	}, nil
}

// Router builds the HTTP router for the container's services
func (c *Container) Router() *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	return handlers.NewRouter(&handlers.RouterConfig{
		Services:          c.Services,
		Codec:             c.Codec,
		Archive:           c.Archive,
		Logger:            c.Logger,
		RequestsPerSecond: c.Config.RateLimit.RequestsPerSecond,
		Burst:             c.Config.RateLimit.Burst,
	})
}

// Health checks the database connection
func (c *Container) Health(ctx context.Context) error {
	return c.conn.HealthCheck(ctx)
}

// Snapshot writes a consistent copy of the database file to path
func (c *Container) Snapshot(ctx context.Context, path string) error {
	return c.conn.CreateSnapshot(ctx, path)
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Files != nil {
		if err := c.Files.Close(); err != nil {
			return fmt.Errorf("failed to close backup storage: %w", err)
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
