package driven

import (
	"context"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

// RecordStore persists canonical records and their audience flavours.
type RecordStore interface {
	// FindByExternalID looks up a master record by its idempotency key.
	// Returns domain.ErrNotFound if no record matches.
	FindByExternalID(ctx context.Context, schema domain.RecordKind, sourceSystem, externalID string) (*domain.Record, error)

	// Create persists a new master record together with one flavour per
	// payload, as a unit. publishFlavours grants the public read role on
	// the created flavours (sources whose flavours default to public pass
	// true; the anonymous-individual rule still strips public).
	// Returns the persisted record with store-assigned identities.
	Create(ctx context.Context, rec *domain.Record, flavours []domain.FlavourPayload, publishFlavours bool) (*domain.Record, error)

	// Update applies a patch to an existing master record, editing each
	// flavour identified in the patch in place. A patch whose issued-to
	// entity classifies as an anonymous individual strips the public read
	// role from all of the record's flavours.
	Update(ctx context.Context, patch domain.RecordPatch) error

	// AttachDocument appends a staged document identity to the record's
	// document list.
	AttachDocument(ctx context.Context, recordID, documentID string) error

	// GetFlavour retrieves a flavour record by its identity.
	GetFlavour(ctx context.Context, flavourID string) (*domain.FlavourRecord, error)

	// ListMissingDocuments returns records for the source system whose
	// document list is empty, for the backfill pipeline.
	ListMissingDocuments(ctx context.Context, sourceSystem string, limit int) ([]domain.Record, error)
}
