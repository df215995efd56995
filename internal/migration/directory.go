package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"crm-ledger/internal/adapters/storage"
	"crm-ledger/internal/backup"
	"crm-ledger/internal/models"
)

// SnapshotPrefix is the key prefix under which dump files are copied before
// they are imported
const SnapshotPrefix = "imported/"

// Collections lists the per-collection dump names in import order
var Collections = []string{
	models.CollectionCustomers,
	models.CollectionItems,
	models.CollectionSales,
	models.CollectionSaleItems,
	models.CollectionPayments,
}

// FileName returns the dump file name of a collection
func FileName(collection string) string {
	return collection + ".json"
}

// Result contains the outcome of a directory import
type Result struct {
	Files    []string             `json:"files"`
	Snapshot []string             `json:"snapshot"`
	Import   *backup.ImportResult `json:"import"`
	Warnings []string             `json:"warnings,omitempty"`
}

// DirectoryMigrator moves a ledger between the store and a directory holding
// one JSON array per collection, the layout of a raw object-store dump
type DirectoryMigrator struct {
	files  storage.FileStorage
	codec  *backup.Codec
	logger *logrus.Logger
	now    func() time.Time
}

// NewDirectoryMigrator creates a migrator over the dump directory files
func NewDirectoryMigrator(files storage.FileStorage, codec *backup.Codec, logger *logrus.Logger) *DirectoryMigrator {
	if logger == nil {
		logger = logrus.New()
	}
	return &DirectoryMigrator{
		files:  files,
		codec:  codec,
		logger: logger,
		now:    time.Now,
	}
}

// CheckFiles returns the dump files present in the directory
func (m *DirectoryMigrator) CheckFiles(ctx context.Context) ([]storage.FileInfo, error) {
	all, err := m.files.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list dump directory: %w", err)
	}

	byKey := make(map[string]storage.FileInfo, len(all))
	for _, info := range all {
		byKey[info.Key] = info
	}

	found := make([]storage.FileInfo, 0, len(Collections))
	for _, collection := range Collections {
		if info, ok := byKey[FileName(collection)]; ok {
			found = append(found, info)
		}
	}
	return found, nil
}

// Load assembles a backup document from the dump files. A missing file is
// an empty collection.
func (m *DirectoryMigrator) Load(ctx context.Context) (*backup.Document, []string, error) {
	raw := make(map[string]json.RawMessage, len(Collections))
	present := make([]string, 0, len(Collections))

	for _, collection := range Collections {
		name := FileName(collection)
		data, err := m.files.Retrieve(ctx, name)
		if storage.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if !json.Valid(data) {
			return nil, nil, &backup.ParseError{Err: fmt.Errorf("%s is not valid JSON", name)}
		}
		raw[collection] = data
		present = append(present, name)
	}

	if len(present) == 0 {
		return nil, nil, models.NewValidationError("files", "no collection dump files found", nil)
	}

	combined, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to assemble document: %w", err)
	}

	doc, err := backup.Parse(combined)
	if err != nil {
		return nil, nil, err
	}
	return doc, present, nil
}

// Import copies the dump files under SnapshotPrefix and imports them into
// the store. A failed snapshot is reported as a warning.
func (m *DirectoryMigrator) Import(ctx context.Context, mode backup.Mode) (*Result, error) {
	doc, present, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: present}

	snapshot, err := m.snapshot(ctx, present)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to snapshot dump files")
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to snapshot dump files: %v", err))
	}
	result.Snapshot = snapshot

	imported, err := m.codec.Import(ctx, doc, mode)
	result.Import = imported
	if err != nil {
		return result, err
	}

	m.logger.WithFields(logrus.Fields{
		"files":   len(present),
		"records": imported.Total(),
		"mode":    mode,
	}).Info("Directory import completed")

	return result, nil
}

// Export writes every collection of the store to its own dump file,
// replacing existing files
func (m *DirectoryMigrator) Export(ctx context.Context) ([]string, error) {
	doc, err := m.codec.Export(ctx)
	if err != nil {
		return nil, err
	}

	collections := map[string]interface{}{
		models.CollectionCustomers: doc.Customers,
		models.CollectionItems:     doc.Items,
		models.CollectionSales:     doc.Sales,
		models.CollectionSaleItems: doc.SaleItems,
		models.CollectionPayments:  doc.Payments,
	}

	written := make([]string, 0, len(Collections))
	for _, collection := range Collections {
		data, err := json.MarshalIndent(collections[collection], "", "  ")
		if err != nil {
			return written, fmt.Errorf("failed to encode %s: %w", collection, err)
		}

		name := FileName(collection)
		if err := m.files.Store(ctx, name, data, &storage.StoreOptions{Overwrite: true}); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, name)
	}

	m.logger.WithField("files", len(written)).Info("Directory export completed")
	return written, nil
}

func (m *DirectoryMigrator) snapshot(ctx context.Context, names []string) ([]string, error) {
	timestamp := m.now().Format("20060102_150405")
	copied := make([]string, 0, len(names))

	for _, name := range names {
		data, err := m.files.Retrieve(ctx, name)
		if err != nil {
			return copied, err
		}

		key := fmt.Sprintf("%s%s_%s", SnapshotPrefix, timestamp, name)
		if err := m.files.Store(ctx, key, data, &storage.StoreOptions{Overwrite: true}); err != nil {
			return copied, err
		}
		copied = append(copied, key)
		m.logger.WithField("snapshot_file", key).Debug("Dump file snapshotted")
	}

	return copied, nil
}
