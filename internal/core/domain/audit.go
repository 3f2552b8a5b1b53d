package domain

import "time"

// TaskStatus is the run state of an import task.
type TaskStatus string

const (
	// StatusRunning indicates the task is in progress.
	StatusRunning TaskStatus = "Running"

	// StatusCompleted indicates the task finished. Per-record failures do
	// not demote a run from Completed; they are carried in RecordErrors.
	StatusCompleted TaskStatus = "Completed"

	// StatusFailed indicates the task aborted before completing.
	StatusFailed TaskStatus = "Failed"

	// StatusConfigError indicates required configuration (credentials) was
	// missing; the task aborted before any window was processed.
	StatusConfigError TaskStatus = "Configuration Error"

	// StatusAuthError indicates the upstream token exchange returned no
	// usable credential.
	StatusAuthError TaskStatus = "Auth Error"
)

// RecordError identifies a single record that failed without aborting the run.
type RecordError struct {
	// ExternalID is the upstream unique key of the failed record.
	ExternalID string

	// Message describes the failure.
	Message string
}

// TaskAuditRecord is the durable audit trail of one import run. It is
// persisted after every window so a mid-run crash leaves an accurate partial
// count.
type TaskAuditRecord struct {
	// ID is the audit record's identity.
	ID string

	// Source identifies which upstream source the run covered.
	Source string

	// Status is the current run state.
	Status TaskStatus

	// ItemsProcessed counts records successfully reconciled so far.
	ItemsProcessed int

	// ItemTotal counts eligible records seen so far. Ineligible records and
	// records from windows whose fetch failed irrecoverably are excluded.
	ItemTotal int

	// Message accumulates window-level annotations (e.g. failed windows).
	Message string

	// RecordErrors lists records that failed without aborting the run.
	RecordErrors []RecordError

	// StartedAt and EndedAt bracket the run. EndedAt is zero while running.
	StartedAt time.Time
	EndedAt   time.Time
}

// TaskPatch is a partial update to a TaskAuditRecord. Nil fields are left
// untouched.
type TaskPatch struct {
	Status         *TaskStatus
	ItemsProcessed *int
	ItemTotal      *int
	Message        *string
	RecordErrors   []RecordError
	EndedAt        *time.Time
}
