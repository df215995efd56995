package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// tempSuffix marks files that are still being written
const tempSuffix = ".tmp"

// LocalFileStorage implements FileStorage on a local directory
type LocalFileStorage struct {
	basePath string
}

// NewLocalFileStorage creates a LocalFileStorage rooted at basePath,
// creating the directory if needed
func NewLocalFileStorage(basePath string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, NewStorageError("NewLocalFileStorage", "", err, false)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewStorageError("NewLocalFileStorage", "", err, false)
	}

	return &LocalFileStorage{basePath: absPath}, nil
}

// BasePath returns the absolute directory files are kept in
func (l *LocalFileStorage) BasePath() string {
	return l.basePath
}

// Store implements FileStorage.Store. The file is written to a temporary
// sibling and renamed into place, so readers never see a partial document.
func (l *LocalFileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Store", key, err, false)
	}
	if err := ctx.Err(); err != nil {
		return NewStorageError("Store", key, err, false)
	}

	filePath := l.getFilePath(key)

	if opts == nil || !opts.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			return NewStorageError("Store", key, ErrFileAlreadyExists, false)
		}
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return NewStorageError("Store", key, err, true)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".*"+tempSuffix)
	if err != nil {
		return NewStorageError("Store", key, err, true)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return NewStorageError("Store", key, err, true)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return NewStorageError("Store", key, err, true)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return NewStorageError("Store", key, err, true)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return NewStorageError("Store", key, err, true)
	}

	return nil
}

// Retrieve implements FileStorage.Retrieve
func (l *LocalFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err, false)
	}

	data, err := os.ReadFile(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError("Retrieve", key, ErrFileNotFound, false)
		}
		return nil, NewStorageError("Retrieve", key, err, true)
	}

	return data, nil
}

// Delete implements FileStorage.Delete
func (l *LocalFileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Delete", key, err, false)
	}

	if err := os.Remove(l.getFilePath(key)); err != nil {
		if os.IsNotExist(err) {
			return NewStorageError("Delete", key, ErrFileNotFound, false)
		}
		return NewStorageError("Delete", key, err, true)
	}

	return nil
}

// Exists implements FileStorage.Exists
func (l *LocalFileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	if _, err := os.Stat(l.getFilePath(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewStorageError("Exists", key, err, true)
	}

	return true, nil
}

// List implements FileStorage.List
func (l *LocalFileStorage) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	files := make([]FileInfo, 0)

	err := filepath.Walk(l.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasSuffix(path, tempSuffix) {
			return nil
		}

		relPath, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(relPath)

		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}

		files = append(files, FileInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, NewStorageError("List", "", err, true)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

// Close implements FileStorage.Close
func (l *LocalFileStorage) Close() error {
	return nil
}

func (l *LocalFileStorage) getFilePath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

// validateKey rejects empty keys and keys escaping the storage root
func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	if strings.HasSuffix(key, tempSuffix) {
		return ErrInvalidKey
	}
	return nil
}
