// Package storage defines persistence contracts for collected session
// records.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"
)

var (
	// ErrNotFound indicates a requested session record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a record for the same run was already stored.
	ErrAlreadyExists = errors.New("record already exists")
)

// SessionRecord is one stored run result.
type SessionRecord struct {
	ID         string
	RunID      string
	Record     sessionrecord.Record
	ReceivedAt time.Time
}

// SessionRecordPage stores one page of session records.
type SessionRecordPage struct {
	Records       []SessionRecord
	NextPageToken string
}

// Condition is a parameterized SQL WHERE fragment. An empty Clause matches
// every record.
type Condition struct {
	Clause string
	Params []any
}

// ListOptions selects one page of records.
type ListOptions struct {
	PageSize  int
	PageToken string
	Where     Condition
}

// DifficultyStats aggregates stored runs for one difficulty preset.
type DifficultyStats struct {
	DifficultyID  string
	Runs          int64
	Victories     int64
	BestScore     int64
	TotalDistance int64
}

// SessionRecordStore persists session records.
type SessionRecordStore interface {
	PutSessionRecord(ctx context.Context, record SessionRecord) error
	GetSessionRecord(ctx context.Context, id string) (SessionRecord, error)
	ListSessionRecords(ctx context.Context, opts ListOptions) (SessionRecordPage, error)
	TopSessionRecords(ctx context.Context, limit int) ([]SessionRecord, error)
	Stats(ctx context.Context) ([]DifficultyStats, error)
}
