package core

// LogEntry is one applied transformation batch: a human-readable step
// name plus the ordered list of equivalent replay operations. Entries
// are append-only and consumed verbatim by the notebook exporter.
type LogEntry struct {
	Step string   `json:"step"`
	Ops  []string `json:"operations"`
}
