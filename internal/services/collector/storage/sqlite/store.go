// Package sqlite provides a SQLite-backed session record store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/louisbranch/aurora-runner/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/aurora-runner/internal/services/collector/storage"
	"github.com/louisbranch/aurora-runner/internal/services/collector/storage/sqlite/migrations"
)

// Store persists session records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

const recordColumns = `id, run_id, score, distance, level, status, difficulty_id, ended_at, received_at`

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// PutSessionRecord inserts one record. A second record with the same
// non-empty run id returns storage.ErrAlreadyExists.
func (s *Store) PutSessionRecord(ctx context.Context, record storage.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("record id is required")
	}
	if err := record.Record.Validate(); err != nil {
		return err
	}
	receivedAt := record.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO session_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(record.RunID),
		record.Record.Score,
		record.Record.Distance,
		record.Record.Level,
		record.Record.Status,
		record.Record.DifficultyID,
		toMillis(record.Record.EndedAt),
		toMillis(receivedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put session record: %w", err)
	}
	return nil
}

// GetSessionRecord returns one record by id.
func (s *Store) GetSessionRecord(ctx context.Context, id string) (storage.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SessionRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SessionRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.SessionRecord{}, fmt.Errorf("record id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM session_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SessionRecord{}, storage.ErrNotFound
		}
		return storage.SessionRecord{}, fmt.Errorf("get session record: %w", err)
	}
	return record, nil
}

// ListSessionRecords returns one page of records matching opts.Where,
// ordered by id.
func (s *Store) ListSessionRecords(ctx context.Context, opts storage.ListOptions) (storage.SessionRecordPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.SessionRecordPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SessionRecordPage{}, fmt.Errorf("storage is not configured")
	}
	if opts.PageSize <= 0 {
		return storage.SessionRecordPage{}, fmt.Errorf("page size must be greater than zero")
	}

	var (
		clauses []string
		params  []any
	)
	if where := strings.TrimSpace(opts.Where.Clause); where != "" {
		clauses = append(clauses, where)
		params = append(params, opts.Where.Params...)
	}
	if token := strings.TrimSpace(opts.PageToken); token != "" {
		clauses = append(clauses, "id > ?")
		params = append(params, token)
	}
	query := `SELECT ` + recordColumns + ` FROM session_records`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY id ASC LIMIT ?`
	params = append(params, opts.PageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.SessionRecordPage{}, fmt.Errorf("list session records: %w", err)
	}
	defer rows.Close()

	page := storage.SessionRecordPage{Records: make([]storage.SessionRecord, 0, opts.PageSize)}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return storage.SessionRecordPage{}, fmt.Errorf("list session records: %w", err)
		}
		page.Records = append(page.Records, record)
	}
	if err := rows.Err(); err != nil {
		return storage.SessionRecordPage{}, fmt.Errorf("list session records: %w", err)
	}
	if len(page.Records) > opts.PageSize {
		page.NextPageToken = page.Records[opts.PageSize-1].ID
		page.Records = page.Records[:opts.PageSize]
	}
	return page, nil
}

// TopSessionRecords returns the highest scoring records, ties broken by id.
func (s *Store) TopSessionRecords(ctx context.Context, limit int) ([]storage.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM session_records ORDER BY score DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top session records: %w", err)
	}
	defer rows.Close()

	records := make([]storage.SessionRecord, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("top session records: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top session records: %w", err)
	}
	return records, nil
}

// Stats aggregates stored runs per difficulty, ordered by difficulty id.
func (s *Store) Stats(ctx context.Context) ([]storage.DifficultyStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT difficulty_id,
		        COUNT(*),
		        SUM(CASE WHEN status = 'VICTORY' THEN 1 ELSE 0 END),
		        MAX(score),
		        SUM(distance)
		   FROM session_records
		  GROUP BY difficulty_id
		  ORDER BY difficulty_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("session record stats: %w", err)
	}
	defer rows.Close()

	var stats []storage.DifficultyStats
	for rows.Next() {
		var entry storage.DifficultyStats
		if err := rows.Scan(&entry.DifficultyID, &entry.Runs, &entry.Victories, &entry.BestScore, &entry.TotalDistance); err != nil {
			return nil, fmt.Errorf("session record stats: %w", err)
		}
		stats = append(stats, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session record stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (storage.SessionRecord, error) {
	var (
		record     storage.SessionRecord
		endedAt    int64
		receivedAt int64
	)
	if err := row.Scan(
		&record.ID,
		&record.RunID,
		&record.Record.Score,
		&record.Record.Distance,
		&record.Record.Level,
		&record.Record.Status,
		&record.Record.DifficultyID,
		&endedAt,
		&receivedAt,
	); err != nil {
		return storage.SessionRecord{}, err
	}
	record.Record.EndedAt = fromMillis(endedAt)
	record.ReceivedAt = fromMillis(receivedAt)
	return record, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.SessionRecordStore = (*Store)(nil)
