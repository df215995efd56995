package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-ledger/internal/repositories"

	"github.com/sirupsen/logrus"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// tableSpec maps a record type onto its table. columns excludes the id
// column, which is always first in selects.
type tableSpec[T any] struct {
	table   string
	columns []string
	values  func(record *T) []interface{}
	scan    func(row rowScanner) (*T, error)
	getID   func(record *T) int64
	setID   func(record *T, id int64)
}

// BaseRepository provides the keyed record operations for one table
type BaseRepository[T any] struct {
	db     *sql.DB
	spec   tableSpec[T]
	config *repositories.Config
	logger *logrus.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository[T any](db *sql.DB, spec tableSpec[T], config *repositories.Config, logger *logrus.Logger) *BaseRepository[T] {
	if logger == nil {
		logger = logrus.New()
	}
	if config == nil {
		config = repositories.DefaultConfig()
	}
	return &BaseRepository[T]{
		db:     db,
		spec:   spec,
		config: config,
		logger: logger,
	}
}

// Create inserts a record under a fresh ID and sets it on the record
func (r *BaseRepository[T]) Create(ctx context.Context, record *T) (int64, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.spec.columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.spec.table, strings.Join(r.spec.columns, ", "), placeholders)

	result, err := r.executeExec(ctx, "create", query, r.spec.values(record)...)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, repositories.NewRepositoryError("create", r.spec.table, 0, err)
	}

	r.spec.setID(record, id)
	return id, nil
}

// Upsert writes the record under its own ID, replacing any stored record
func (r *BaseRepository[T]) Upsert(ctx context.Context, record *T) error {
	id := r.spec.getID(record)
	if id <= 0 {
		return repositories.InvalidIDError("upsert", r.spec.table, id)
	}

	assignments := make([]string, len(r.spec.columns))
	for i, column := range r.spec.columns {
		assignments[i] = fmt.Sprintf("%s = excluded.%s", column, column)
	}

	query := fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (?%s) ON CONFLICT(id) DO UPDATE SET %s",
		r.spec.table,
		strings.Join(r.spec.columns, ", "),
		strings.Repeat(", ?", len(r.spec.columns)),
		strings.Join(assignments, ", "),
	)

	args := append([]interface{}{id}, r.spec.values(record)...)
	_, err := r.executeExec(ctx, "upsert", query, args...)
	return err
}

// GetAll retrieves every record in ID order
func (r *BaseRepository[T]) GetAll(ctx context.Context) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", r.selectColumns(), r.spec.table)
	return r.queryRecords(ctx, "get_all", query)
}

// GetByID retrieves a record by its ID
func (r *BaseRepository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	if id <= 0 {
		return nil, repositories.InvalidIDError("get_by_id", r.spec.table, id)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", r.selectColumns(), r.spec.table)

	var record *T
	err := r.queryRow(ctx, "get_by_id", query, []interface{}{id}, func(row rowScanner) error {
		var scanErr error
		record, scanErr = r.spec.scan(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError(r.spec.table, id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", r.spec.table, id, err)
	}

	return record, nil
}

// Remove deletes a record by ID. Absent IDs are ignored.
func (r *BaseRepository[T]) Remove(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.spec.table)
	_, err := r.executeExec(ctx, "remove", query, id)
	return err
}

// Count returns the number of records in the table
func (r *BaseRepository[T]) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.spec.table)

	var count int
	err := r.queryRow(ctx, "count", query, nil, func(row rowScanner) error {
		return row.Scan(&count)
	})
	if err != nil {
		return 0, repositories.NewRepositoryError("count", r.spec.table, 0, err)
	}

	return count, nil
}

// listWhere retrieves the records whose column equals value, in ID order
func (r *BaseRepository[T]) listWhere(ctx context.Context, operation, column string, value interface{}) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY id", r.selectColumns(), r.spec.table, column)
	return r.queryRecords(ctx, operation, query, value)
}

func (r *BaseRepository[T]) selectColumns() string {
	return "id, " + strings.Join(r.spec.columns, ", ")
}

// withTimeout bounds a single store call by the configured operation timeout
func (r *BaseRepository[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.config.OperationTimeout)
}

// logQuery logs a query with its execution time
func (r *BaseRepository[T]) logQuery(operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.spec.table,
		"query":     query,
		"args":      args,
		"duration":  duration,
	}

	switch {
	case err != nil:
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	case r.config.SlowQueryThreshold > 0 && duration > r.config.SlowQueryThreshold:
		r.logger.WithFields(fields).Warn("Slow query")
	default:
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// queryRecords runs a select and scans every row
func (r *BaseRepository[T]) queryRecords(ctx context.Context, operation, query string, args ...interface{}) ([]*T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logQuery(operation, query, args, time.Since(start), err)
		return nil, repositories.NewRepositoryError(operation, r.spec.table, 0, err)
	}
	defer rows.Close()

	records := make([]*T, 0)
	for rows.Next() {
		record, err := r.spec.scan(rows)
		if err != nil {
			r.logQuery(operation, query, args, time.Since(start), err)
			return nil, repositories.NewRepositoryError(operation, r.spec.table, 0, err)
		}
		records = append(records, record)
	}

	err = rows.Err()
	r.logQuery(operation, query, args, time.Since(start), err)
	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.spec.table, 0, err)
	}

	return records, nil
}

// queryRow runs a single-row query and hands the row to scan before the
// operation deadline is released
func (r *BaseRepository[T]) queryRow(ctx context.Context, operation, query string, args []interface{}, scan func(row rowScanner) error) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := scan(r.db.QueryRowContext(ctx, query, args...))

	logErr := err
	if errors.Is(err, sql.ErrNoRows) {
		logErr = nil
	}
	r.logQuery(operation, query, args, time.Since(start), logErr)

	return err
}

// executeExec executes a non-query statement and logs the result
func (r *BaseRepository[T]) executeExec(ctx context.Context, operation, query string, args ...interface{}) (sql.Result, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.spec.table, 0, err)
	}

	return result, nil
}
