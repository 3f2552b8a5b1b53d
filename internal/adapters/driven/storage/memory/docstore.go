package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps staged attachment bytes and metadata in memory.
type DocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]*domain.AttachmentDocument // by document ID
	blobs map[string][]byte                     // by storage key
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:  make(map[string]*domain.AttachmentDocument),
		blobs: make(map[string][]byte),
	}
}

// CreateDocument stages the bytes under a sanitized key and records the
// document metadata.
func (s *DocumentStore) CreateDocument(_ context.Context, fileName string, data []byte, uploadedBy string, readRoles, writeRoles []string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &domain.AttachmentDocument{
		ID:         uuid.NewString(),
		FileName:   domain.SanitizeFileName(fileName),
		UploadedBy: uploadedBy,
		ReadRoles:  append([]string(nil), readRoles...),
		WriteRoles: append([]string(nil), writeRoles...),
		AddedAt:    time.Now(),
	}
	doc.Key = doc.ID + "-" + doc.FileName

	s.blobs[doc.Key] = append([]byte(nil), data...)
	s.docs[doc.ID] = doc
	return doc.ID, nil
}

// FindDocumentByName returns the identity of a staged document with the given
// sanitized file name.
func (s *DocumentStore) FindDocumentByName(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if doc.FileName == name {
			return doc.ID, nil
		}
	}
	return "", domain.ErrNotFound
}

// RestrictDocumentAccess removes the public read role from the document.
func (s *DocumentStore) RestrictDocumentAccess(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.ReadRoles = domain.RemoveRole(doc.ReadRoles, domain.RolePublic)
	return nil
}

// GetDocument retrieves document metadata by identity.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.AttachmentDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	copied.ReadRoles = append([]string(nil), doc.ReadRoles...)
	copied.WriteRoles = append([]string(nil), doc.WriteRoles...)
	return &copied, nil
}
