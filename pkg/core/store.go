package core

import "context"

// SessionStore owns session-scoped datasets and their replay logs.
// Implementations are single-writer per session: at most one in-flight
// transformation batch mutates a given dataset at a time.
type SessionStore interface {
	// Create registers a new session around the dataset and returns
	// its id.
	Create(name string, ds *Dataset) string
	// Load returns the session's dataset, failing with
	// *SessionNotFoundError if absent.
	Load(id string) (*Dataset, error)
	// Save stores the mutated dataset back into the session.
	Save(id string, ds *Dataset) error
	// AppendLog appends one batch entry to the session's replay log.
	AppendLog(id string, entry LogEntry) error
	// Log returns the session's replay log in append order.
	Log(id string) ([]LogEntry, error)
	// Delete removes the session and its log. Deleting an unknown id
	// is a no-op.
	Delete(id string)
}

// Advisory is the AI collaborator's opinion on a planned step. Purely
// advisory: it never blocks or alters an apply outcome.
type Advisory struct {
	Step           string   `json:"step"`
	Action         string   `json:"action"`
	IsRecommended  bool     `json:"is_recommended"`
	Warnings       []string `json:"warnings"`
	Recommendation string   `json:"recommendation"`
}

// Advisor requests a natural-language opinion on a planned action.
// Implementations must degrade to *AdvisoryUnavailableError on any
// failure so callers can proceed with a warning.
type Advisor interface {
	Validate(ctx context.Context, step, description string, columns []string, datasetContext map[string]any) (*Advisory, error)
}
