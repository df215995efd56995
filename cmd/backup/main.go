package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"crm-ledger/internal/adapters/storage"
	"crm-ledger/internal/backup"
	"crm-ledger/internal/config"
	"crm-ledger/internal/migration"
	"crm-ledger/pkg/server"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		action  = flag.String("action", "export", "Action: export, import, list, restore, dump-dir, load-dir, check-dir")
		file    = flag.String("file", "", "Backup document to import (import)")
		key     = flag.String("key", "", "Stored backup file name (restore)")
		dir     = flag.String("dir", "", "Directory of per-collection JSON dumps (dump-dir, load-dir, check-dir)")
		mode    = flag.String("mode", "remap", "Import mode: remap or merge")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create logger")
	}
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	importMode, err := backup.ParseMode(*mode)
	if err != nil {
		logger.WithError(err).Fatal("Invalid import mode")
	}

	container, err := server.NewContainer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	ctx := context.Background()

	logger.WithFields(logrus.Fields{
		"action":      *action,
		"db_path":     cfg.Database.Path,
		"backup_path": cfg.Backup.Path,
	}).Info("Starting backup tool")

	switch *action {
	case "export":
		err = exportBackup(ctx, container)
	case "import":
		err = importBackup(ctx, container, *file, importMode)
	case "list":
		err = listBackups(ctx, container)
	case "restore":
		err = restoreBackup(ctx, container, *key, importMode)
	case "dump-dir", "load-dir", "check-dir":
		err = runDirectory(ctx, container, *action, *dir, importMode)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: export, import, list, restore, dump-dir, load-dir, check-dir")
	}
	if err != nil {
		logger.WithError(err).Fatalf("Backup %s failed", *action)
	}

	logger.Info("Backup tool completed successfully")
}

func exportBackup(ctx context.Context, c *server.Container) error {
	info, err := c.Archive.Save(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Backup written: %s (%d bytes)\n", info.Key, info.Size)
	return nil
}

func importBackup(ctx context.Context, c *server.Container, path string, mode backup.Mode) error {
	if path == "" {
		return fmt.Errorf("-file is required for import")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup document: %w", err)
	}

	result, err := c.Codec.ImportJSON(ctx, data, mode)
	printResult(result)
	return err
}

func listBackups(ctx context.Context, c *server.Container) error {
	files, err := c.Archive.List(ctx)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Println("No backup files found.")
		return nil
	}

	fmt.Printf("Found %d backup files:\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s  %d bytes  %s\n", f.Key, f.Size, f.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func restoreBackup(ctx context.Context, c *server.Container, key string, mode backup.Mode) error {
	if key == "" {
		return fmt.Errorf("-key is required for restore")
	}

	result, err := c.Archive.Restore(ctx, key, mode)
	printResult(result)
	return err
}

func runDirectory(ctx context.Context, c *server.Container, action, dir string, mode backup.Mode) error {
	if dir == "" {
		return fmt.Errorf("-dir is required for %s", action)
	}

	files, err := storage.NewLocalFileStorage(dir)
	if err != nil {
		return err
	}
	defer files.Close()

	migrator := migration.NewDirectoryMigrator(files, c.Codec, c.Logger)

	switch action {
	case "dump-dir":
		written, err := migrator.Export(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d collection files to %s\n", len(written), dir)
		return nil

	case "check-dir":
		found, err := migrator.CheckFiles(ctx)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Printf("No collection files found in %s\n", dir)
			return nil
		}
		for _, f := range found {
			fmt.Printf("  %s  %d bytes  %s\n", f.Key, f.Size, f.LastModified.Format("2006-01-02 15:04:05"))
		}
		return nil

	default:
		result, err := migrator.Import(ctx, mode)
		if result != nil {
			for _, warning := range result.Warnings {
				fmt.Printf("Warning: %s\n", warning)
			}
			printResult(result.Import)
		}
		return err
	}
}

func printResult(result *backup.ImportResult) {
	if result == nil {
		return
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(out))
}
