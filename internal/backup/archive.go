package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crm-ledger/internal/adapters/storage"
	"crm-ledger/internal/models"
)

const (
	// FilePrefix starts the name of every backup file
	FilePrefix = "crm_backup_"

	// FileTimeLayout is the timestamp part of a backup file name
	FileTimeLayout = "2006-01-02-15-04-05"

	fileExt = ".json"
)

// FileName returns the backup file name for an export taken at t
func FileName(t time.Time) string {
	return FilePrefix + t.Format(FileTimeLayout) + fileExt
}

// Archive keeps exported documents in file storage and restores them
type Archive struct {
	codec  *Codec
	files  storage.FileStorage
	clock  *models.Clock
	logger *logrus.Logger
}

// NewArchive creates a backup archive
func NewArchive(codec *Codec, files storage.FileStorage, clock *models.Clock, logger *logrus.Logger) *Archive {
	if logger == nil {
		logger = logrus.New()
	}
	return &Archive{
		codec:  codec,
		files:  files,
		clock:  clock,
		logger: logger,
	}
}

// Save exports the store and writes it as a new backup file. Two saves in
// the same second get distinct names.
func (a *Archive) Save(ctx context.Context) (*storage.FileInfo, error) {
	data, err := a.codec.ExportJSON(ctx)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	key := FileName(now)

	err = a.files.Store(ctx, key, data, nil)
	if storage.IsAlreadyExists(err) {
		key = strings.TrimSuffix(key, fileExt) + "-" + uuid.NewString()[:8] + fileExt
		err = a.files.Store(ctx, key, data, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save backup: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"key":  key,
		"size": len(data),
	}).Info("Backup saved")

	return &storage.FileInfo{
		Key:          key,
		Size:         int64(len(data)),
		LastModified: now,
	}, nil
}

// List returns the saved backup files, oldest first
func (a *Archive) List(ctx context.Context) ([]storage.FileInfo, error) {
	files, err := a.files.List(ctx, FilePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]storage.FileInfo, 0, len(files))
	for _, f := range files {
		if strings.HasSuffix(f.Key, fileExt) {
			backups = append(backups, f)
		}
	}
	return backups, nil
}

// Read returns the raw contents of a saved backup
func (a *Archive) Read(ctx context.Context, key string) ([]byte, error) {
	if !strings.HasPrefix(key, FilePrefix) || !strings.HasSuffix(key, fileExt) {
		return nil, models.NewValidationError("key", fmt.Sprintf("%q is not a backup file", key), key)
	}
	return a.files.Retrieve(ctx, key)
}

// Restore imports a saved backup into the store
func (a *Archive) Restore(ctx context.Context, key string, mode Mode) (*ImportResult, error) {
	data, err := a.Read(ctx, key)
	if err != nil {
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"key":  key,
		"mode": mode,
	}).Info("Restoring backup")

	return a.codec.ImportJSON(ctx, data, mode)
}
