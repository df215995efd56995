package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func storageImplementations(t *testing.T) map[string]FileStorage {
	t.Helper()

	local, err := NewLocalFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}

	return map[string]FileStorage{
		"local":  local,
		"memory": NewMemoryFileStorage(),
	}
}

func TestFileStorage_Contract(t *testing.T) {
	for name, storage := range storageImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			defer storage.Close()

			if err := storage.Store(ctx, "crm_backup_a.json", []byte(`{"a":1}`), nil); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}

			data, err := storage.Retrieve(ctx, "crm_backup_a.json")
			if err != nil {
				t.Fatalf("Retrieve() failed: %v", err)
			}
			if string(data) != `{"a":1}` {
				t.Errorf("Retrieve() = %s, want {\"a\":1}", data)
			}

			err = storage.Store(ctx, "crm_backup_a.json", []byte("again"), nil)
			if !IsAlreadyExists(err) {
				t.Errorf("Store() on existing key error = %v, want already exists", err)
			}
			if err := storage.Store(ctx, "crm_backup_a.json", []byte("again"), &StoreOptions{Overwrite: true}); err != nil {
				t.Errorf("Store() with overwrite failed: %v", err)
			}

			if err := storage.Store(ctx, "crm_backup_b.json", []byte("b"), nil); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}
			if err := storage.Store(ctx, "other.txt", []byte("x"), nil); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}

			files, err := storage.List(ctx, "crm_backup_")
			if err != nil {
				t.Fatalf("List() failed: %v", err)
			}
			if len(files) != 2 || files[0].Key != "crm_backup_a.json" || files[1].Key != "crm_backup_b.json" {
				t.Errorf("List() = %+v", files)
			}
			if files[0].Size != int64(len("again")) {
				t.Errorf("Size = %d, want %d", files[0].Size, len("again"))
			}

			exists, err := storage.Exists(ctx, "crm_backup_b.json")
			if err != nil || !exists {
				t.Errorf("Exists() = %v, %v, want true", exists, err)
			}

			if err := storage.Delete(ctx, "crm_backup_b.json"); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}
			if _, err := storage.Retrieve(ctx, "crm_backup_b.json"); !IsNotFound(err) {
				t.Errorf("Retrieve() after delete error = %v, want not found", err)
			}
			if err := storage.Delete(ctx, "crm_backup_b.json"); !IsNotFound(err) {
				t.Errorf("second Delete() error = %v, want not found", err)
			}
		})
	}
}

func TestFileStorage_InvalidKeys(t *testing.T) {
	keys := []string{"", "../escape.json", "/abs.json", `dir\file.json`, "half.json.tmp"}

	for name, storage := range storageImplementations(t) {
		for _, key := range keys {
			t.Run(name+"/"+key, func(t *testing.T) {
				err := storage.Store(context.Background(), key, []byte("x"), nil)
				if !IsInvalidKey(err) {
					t.Errorf("Store(%q) error = %v, want invalid key", key, err)
				}
				if IsRetryable(err) {
					t.Errorf("invalid key should not be retryable")
				}
			})
		}
	}
}

func TestLocalFileStorage_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalFileStorage(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := storage.Store(ctx, "nested/doc.json", []byte("payload"), nil); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "doc.json" {
		t.Errorf("directory holds %v, want only doc.json", entries)
	}

	// Leftover temp files from a crashed write are not listed
	if err := os.WriteFile(filepath.Join(dir, "stale.json.123.tmp"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	files, err := storage.List(ctx, "")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(files) != 1 || files[0].Key != "nested/doc.json" {
		t.Errorf("List() = %+v, want only nested/doc.json", files)
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	config := &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	tests := []struct {
		name         string
		failures     int
		err          error
		wantAttempts int
		wantErr      bool
	}{
		{"success on first attempt", 0, nil, 1, false},
		{"success after retryable failure", 1, NewStorageError("Store", "k", ErrStorageUnavailable, true), 2, false},
		{"gives up after max attempts", 5, NewStorageError("Store", "k", ErrStorageUnavailable, true), 3, true},
		{"does not retry permanent errors", 5, NewStorageError("Store", "k", ErrInvalidKey, false), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := WithRetry(ctx, config, func(ctx context.Context) error {
				attempts++
				if attempts <= tt.failures {
					return tt.err
				}
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("WithRetry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := WithRetry(cancelled, config, func(ctx context.Context) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WithRetry() error = %v, want context.Canceled", err)
		}
	})
}

func TestRetryConfig_CalculateDelay(t *testing.T) {
	config := &RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      300 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{6, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := config.calculateDelay(tt.attempt); got != tt.want {
			t.Errorf("calculateDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

// flakyStorage fails the first failures Store calls with a retryable error
type flakyStorage struct {
	*MemoryFileStorage
	failures int
	calls    int
}

func (f *flakyStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	f.calls++
	if f.calls <= f.failures {
		return NewStorageError("Store", key, ErrStorageUnavailable, true)
	}
	return f.MemoryFileStorage.Store(ctx, key, data, opts)
}

func TestRetryableFileStorage(t *testing.T) {
	inner := &flakyStorage{MemoryFileStorage: NewMemoryFileStorage(), failures: 2}
	storage := NewRetryableFileStorage(inner, &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 1.0,
	}, testLogger())

	ctx := context.Background()
	if err := storage.Store(ctx, "doc.json", []byte("x"), nil); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}

	data, err := storage.Retrieve(ctx, "doc.json")
	if err != nil || string(data) != "x" {
		t.Errorf("Retrieve() = %s, %v", data, err)
	}
}

func TestFactory(t *testing.T) {
	factory := NewFactory(DefaultRetryConfig(), testLogger())

	tests := []struct {
		name    string
		config  *StorageConfig
		wantErr bool
	}{
		{"nil config", nil, true},
		{"memory", &StorageConfig{Type: "memory"}, false},
		{"local", &StorageConfig{Type: "local", BasePath: t.TempDir()}, false},
		{"local by default", &StorageConfig{BasePath: t.TempDir()}, false},
		{"unsupported", &StorageConfig{Type: "s3"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := factory.Create(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer storage.Close()

			if _, ok := storage.(*RetryableFileStorage); !ok {
				t.Errorf("Create() = %T, want retrying storage", storage)
			}

			ctx := context.Background()
			if err := storage.Store(ctx, "doc.json", []byte("x"), nil); err != nil {
				t.Errorf("Store() failed: %v", err)
			}
		})
	}
}
