package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu       sync.RWMutex
	records  map[string]*domain.Record        // by record ID
	flavours map[string]*domain.FlavourRecord // by flavour ID
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records:  make(map[string]*domain.Record),
		flavours: make(map[string]*domain.FlavourRecord),
	}
}

// FindByExternalID looks up a master record by its idempotency key.
func (s *RecordStore) FindByExternalID(_ context.Context, schema domain.RecordKind, sourceSystem, externalID string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.Schema == schema && rec.SourceSystem == sourceSystem && rec.SourceExternalID == externalID {
			return copyRecord(rec), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create persists a new master record plus one flavour per payload, as a
// unit.
func (s *RecordStore) Create(_ context.Context, rec *domain.Record, flavours []domain.FlavourPayload, publishFlavours bool) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.Schema == rec.Schema && existing.SourceSystem == rec.SourceSystem &&
			existing.SourceExternalID == rec.SourceExternalID {
			return nil, domain.ErrAlreadyExists
		}
	}

	stored := copyRecord(rec)
	stored.ID = uuid.NewString()
	now := time.Now()
	stored.DateAdded = now
	stored.DateUpdated = now

	for _, payload := range flavours {
		readRoles := []string{domain.RoleSysadmin}
		if publishFlavours {
			readRoles = domain.DocumentReadRoles(rec.IssuedTo)
		}
		flavour := &domain.FlavourRecord{
			ID:        uuid.NewString(),
			RecordID:  stored.ID,
			Payload:   payload,
			ReadRoles: readRoles,
		}
		s.flavours[flavour.ID] = flavour
		stored.Flavours = append(stored.Flavours, domain.FlavourRef{ID: flavour.ID, Audience: payload.Audience()})
	}

	s.records[stored.ID] = stored
	return copyRecord(stored), nil
}

// Update applies a patch to an existing master record. When the refreshed
// issued-to entity classifies as an anonymous individual, the public read
// role is stripped from every flavour of the record.
func (s *RecordStore) Update(_ context.Context, patch domain.RecordPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[patch.RecordID]
	if !ok {
		return domain.ErrNotFound
	}

	for flavourID, payload := range patch.Flavours {
		flavour, ok := s.flavours[flavourID]
		if !ok || flavour.RecordID != rec.ID {
			return fmt.Errorf("%w: flavour %s", domain.ErrNotFound, flavourID)
		}
		flavour.Payload = payload
	}

	if patch.IssuedTo.IsAnonymous() {
		for _, flavour := range s.flavours {
			if flavour.RecordID == rec.ID {
				flavour.ReadRoles = domain.RemoveRole(flavour.ReadRoles, domain.RolePublic)
			}
		}
	}

	rec.DateIssued = patch.DateIssued
	rec.IssuingAgency = patch.IssuingAgency
	rec.Legislation = patch.Legislation
	rec.IssuedTo = patch.IssuedTo
	rec.Location = patch.Location
	rec.OutcomeDescription = patch.OutcomeDescription
	rec.DateUpdated = patch.DateUpdated
	return nil
}

// AttachDocument appends a staged document identity to the record.
func (s *RecordStore) AttachDocument(_ context.Context, recordID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Documents = append(rec.Documents, documentID)
	return nil
}

// GetFlavour retrieves a flavour record by identity.
func (s *RecordStore) GetFlavour(_ context.Context, flavourID string) (*domain.FlavourRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flavour, ok := s.flavours[flavourID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *flavour
	return &copied, nil
}

// ListMissingDocuments returns records for the source system with an empty
// document list.
func (s *RecordStore) ListMissingDocuments(_ context.Context, sourceSystem string, limit int) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Record
	for _, rec := range s.records {
		if rec.SourceSystem != sourceSystem || rec.HasDocuments() {
			continue
		}
		out = append(out, *copyRecord(rec))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// copyRecord returns a deep enough copy to keep callers from mutating the
// stored record through shared slices.
func copyRecord(rec *domain.Record) *domain.Record {
	copied := *rec
	copied.Documents = append([]string(nil), rec.Documents...)
	copied.Flavours = append([]domain.FlavourRef(nil), rec.Flavours...)
	return &copied
}
