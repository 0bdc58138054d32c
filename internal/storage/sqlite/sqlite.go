package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository, the schema is migrated on creation.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	// Pollers of concurrent tasks write outcomes at the same time.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const recordColumns = `
	id, operation, prompt, task_id, status,
	result, error,
	submitted_at, resolved_at
`

// CreateRecord stores a new record.
func (r *Repository) CreateRecord(ctx context.Context, rec model.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record id is required: %w", model.ErrNotValid)
	}

	query := `INSERT INTO records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.Operation,
		rec.Prompt,
		rec.TaskID,
		rec.Status,
		nullableResult(rec),
		rec.Error,
		rec.SubmittedAt.Unix(),
		nullableUnix(rec.ResolvedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: records.") {
			return fmt.Errorf("record already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert record: %w", err)
	}

	r.logger.Debugf("Created record in repository: %s", rec.ID)
	return nil
}

// UpdateRecord replaces an existing record.
func (r *Repository) UpdateRecord(ctx context.Context, rec model.Record) error {
	query := `
		UPDATE records
		SET
			operation = ?,
			prompt = ?,
			task_id = ?,
			status = ?,
			result = ?,
			error = ?,
			submitted_at = ?,
			resolved_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		rec.Operation,
		rec.Prompt,
		rec.TaskID,
		rec.Status,
		nullableResult(rec),
		rec.Error,
		rec.SubmittedAt.Unix(),
		nullableUnix(rec.ResolvedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("record %s: %w", rec.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated record in repository: %s", rec.ID)
	return nil
}

// GetRecord retrieves a record by ID.
func (r *Repository) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = ?`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query record: %w", err)
	}

	return &rec, nil
}

// ListRecords returns the records newest first.
func (r *Repository) ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.Record, error) {
	var (
		where []string
		args  []any
	)
	if filter.Operation != nil {
		where = append(where, "operation = ?")
		args = append(args, *filter.Operation)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}

	query := `SELECT ` + recordColumns + ` FROM records`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY submitted_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (model.Record, error) {
	var rec model.Record
	var result sql.NullString
	var submittedAt int64
	var resolvedAt sql.NullInt64

	err := s.Scan(
		&rec.ID,
		&rec.Operation,
		&rec.Prompt,
		&rec.TaskID,
		&rec.Status,
		&result,
		&rec.Error,
		&submittedAt,
		&resolvedAt,
	)
	if err != nil {
		return model.Record{}, err
	}

	if result.Valid {
		rec.Result = []byte(result.String)
	}
	rec.SubmittedAt = timeFromUnix(submittedAt)
	if resolvedAt.Valid {
		t := timeFromUnix(resolvedAt.Int64)
		rec.ResolvedAt = &t
	}

	return rec, nil
}

func nullableResult(rec model.Record) *string {
	if len(rec.Result) == 0 {
		return nil
	}
	s := string(rec.Result)
	return &s
}

func nullableUnix(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
