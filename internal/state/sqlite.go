package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements HistoryStore using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite history store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// RecordBatch inserts one applied batch. A missing id or timestamp is
// filled in.
func (s *SQLiteStore) RecordBatch(b *Batch) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if b.ID == "" {
		b.ID = generateID()
	}
	if b.AppliedAt.IsZero() {
		b.AppliedAt = time.Now().UTC()
	}

	ops, err := json.Marshal(b.Ops)
	if err != nil {
		return fmt.Errorf("failed to encode operations: %w", err)
	}
	cols, err := json.Marshal(b.ColsDropped)
	if err != nil {
		return fmt.Errorf("failed to encode dropped columns: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO batches (id, session_id, dataset, step, operations, rows_removed, columns_dropped, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.SessionID, b.Dataset, b.Step, string(ops), b.RowsRemoved, string(cols), b.AppliedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record batch: %w", err)
	}

	return nil
}

// ListBatches retrieves all batches for a session in apply order.
func (s *SQLiteStore) ListBatches(sessionID string) ([]*Batch, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, dataset, step, operations, rows_removed, columns_dropped, applied_at
		 FROM batches WHERE session_id = ? ORDER BY applied_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	return scanBatches(rows)
}

// ListRecent retrieves the most recently applied batches across all
// sessions, newest first.
func (s *SQLiteStore) ListRecent(limit int) ([]*Batch, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, dataset, step, operations, rows_removed, columns_dropped, applied_at
		 FROM batches ORDER BY applied_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent batches: %w", err)
	}
	defer rows.Close()

	return scanBatches(rows)
}

// DeleteSession removes all recorded batches for a session.
func (s *SQLiteStore) DeleteSession(sessionID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(`DELETE FROM batches WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session batches: %w", err)
	}
	return nil
}

func scanBatches(rows *sql.Rows) ([]*Batch, error) {
	var batches []*Batch
	for rows.Next() {
		b := &Batch{}
		var ops, cols string

		err := rows.Scan(&b.ID, &b.SessionID, &b.Dataset, &b.Step, &ops, &b.RowsRemoved, &cols, &b.AppliedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}

		if err := json.Unmarshal([]byte(ops), &b.Ops); err != nil {
			return nil, fmt.Errorf("failed to decode operations: %w", err)
		}
		if err := json.Unmarshal([]byte(cols), &b.ColsDropped); err != nil {
			return nil, fmt.Errorf("failed to decode dropped columns: %w", err)
		}
		batches = append(batches, b)
	}

	return batches, rows.Err()
}

// Ensure SQLiteStore implements HistoryStore interface
var _ HistoryStore = (*SQLiteStore)(nil)
