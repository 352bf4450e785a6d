package core

import "fmt"

// UnknownColumnError reports a column id outside the current valid
// range. Plans referencing such ids have those entries filtered and
// reported, not treated as fatal.
type UnknownColumnError struct {
	ID  int
	Max int
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column id %d (valid range 1..%d)", e.ID, e.Max)
}

// CoercionError reports a failed categorical-to-numeric conversion
// for a mean/median fill. The column is left untouched; callers skip
// it and continue the batch.
type CoercionError struct {
	Column string
	Value  string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("column %q cannot be coerced to numeric (value %q)", e.Column, e.Value)
}

// InsufficientDataError reports that a domain has no eligible columns
// to work on. The operation is a no-op, not a failure.
type InsufficientDataError struct {
	Domain Domain
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: %s", e.Domain, e.Reason)
}

// SessionNotFoundError reports an unknown session id. Surfaced to the
// caller as a terminal, user-visible failure.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.ID)
}

// AdvisoryUnavailableError reports that the AI-advisory collaborator
// could not be reached or produced an unusable reply. Always
// non-fatal: logged and ignored by the cleaning pipeline.
type AdvisoryUnavailableError struct {
	Cause error
}

func (e *AdvisoryUnavailableError) Error() string {
	return fmt.Sprintf("advisory unavailable: %v", e.Cause)
}

func (e *AdvisoryUnavailableError) Unwrap() error {
	return e.Cause
}
