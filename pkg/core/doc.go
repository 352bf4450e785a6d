// Package core defines the shared language of the LeapClean system.
//
// This package contains:
//   - Domain entities (Dataset, Column, ColumnDescriptor, DiagnosticRecord)
//   - The plan vocabulary (Domain, Action, Plan)
//   - The replay log types (LogEntry)
//   - Service interfaces (SessionStore, Advisor)
//   - The error taxonomy shared by every cleaning surface
//
// The Golden Rule: pkg/core imports ONLY the stdlib.
// All other packages depend on core, not the reverse.
package core
