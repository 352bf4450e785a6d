// Package state persists the history of applied cleaning batches in
// SQLite so audits survive process restarts. The in-memory session
// store remains the source of truth for live datasets; this package
// only records what was applied, never the data itself.
package state

import "time"

// Batch is one applied transformation batch as recorded for audit.
type Batch struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Dataset     string    `json:"dataset"`
	Step        string    `json:"step"`
	Ops         []string  `json:"operations"`
	RowsRemoved int       `json:"rows_removed"`
	ColsDropped []string  `json:"columns_dropped"`
	AppliedAt   time.Time `json:"applied_at"`
}

// HistoryStore records applied batches and reads them back.
type HistoryStore interface {
	RecordBatch(b *Batch) error
	ListBatches(sessionID string) ([]*Batch, error)
	ListRecent(limit int) ([]*Batch, error)
	DeleteSession(sessionID string) error
}
