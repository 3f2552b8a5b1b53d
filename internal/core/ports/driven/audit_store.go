package driven

import (
	"context"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

// AuditStore persists task audit records for crash-visible run state.
type AuditStore interface {
	// CreateTaskRecord persists a new audit record and returns its identity.
	CreateTaskRecord(ctx context.Context, rec *domain.TaskAuditRecord) (string, error)

	// UpdateTaskRecord applies a partial update to an audit record. Called
	// after every window and at run completion.
	UpdateTaskRecord(ctx context.Context, id string, patch domain.TaskPatch) error

	// GetTaskRecord retrieves an audit record by identity.
	GetTaskRecord(ctx context.Context, id string) (*domain.TaskAuditRecord, error)

	// ListTaskRecords returns recent audit records, most recent first.
	ListTaskRecords(ctx context.Context, limit int) ([]domain.TaskAuditRecord, error)
}
