package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
)

// Ensure AuditStore implements the interface.
var _ driven.AuditStore = (*AuditStore)(nil)

// AuditStore keeps task audit records in memory.
type AuditStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.TaskAuditRecord
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{tasks: make(map[string]*domain.TaskAuditRecord)}
}

// CreateTaskRecord persists a new audit record.
func (s *AuditStore) CreateTaskRecord(_ context.Context, rec *domain.TaskAuditRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyTask(rec)
	stored.ID = uuid.NewString()
	s.tasks[stored.ID] = stored
	return stored.ID, nil
}

// UpdateTaskRecord applies a partial update to an audit record.
func (s *AuditStore) UpdateTaskRecord(_ context.Context, id string, patch domain.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}

	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.ItemTotal != nil {
		task.ItemTotal = *patch.ItemTotal
	}
	if patch.ItemsProcessed != nil {
		task.ItemsProcessed = *patch.ItemsProcessed
	}
	if patch.Message != nil {
		task.Message = *patch.Message
	}
	if patch.RecordErrors != nil {
		task.RecordErrors = append([]domain.RecordError(nil), patch.RecordErrors...)
	}
	if patch.EndedAt != nil {
		task.EndedAt = *patch.EndedAt
	}
	return nil
}

// GetTaskRecord retrieves an audit record by identity.
func (s *AuditStore) GetTaskRecord(_ context.Context, id string) (*domain.TaskAuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyTask(task), nil
}

// ListTaskRecords returns audit records, most recently started first.
func (s *AuditStore) ListTaskRecords(_ context.Context, limit int) ([]domain.TaskAuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TaskAuditRecord, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, *copyTask(task))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyTask(rec *domain.TaskAuditRecord) *domain.TaskAuditRecord {
	copied := *rec
	copied.RecordErrors = append([]domain.RecordError(nil), rec.RecordErrors...)
	return &copied
}
