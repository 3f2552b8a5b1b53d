package driven

import (
	"context"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

// DocumentStore stages attachment binaries into durable storage and keeps
// their metadata. Blob bytes and metadata are deliberately split behind one
// port; adapters decide how each is kept.
type DocumentStore interface {
	// CreateDocument uploads data under a sanitized version of fileName and
	// records its metadata. aclHint carries the source's publication
	// default through to the store. Returns the document identity.
	CreateDocument(ctx context.Context, fileName string, data []byte, uploadedBy string, readRoles, writeRoles []string, aclHint string) (string, error)

	// FindDocumentByName returns the identity of an already-staged document
	// with the given (sanitized) file name, or domain.ErrNotFound. Used to
	// detect orphaned attachments before re-downloading.
	FindDocumentByName(ctx context.Context, name string) (string, error)

	// RestrictDocumentAccess removes the public read role from the document.
	// Applied when a re-import re-identifies the owning record as an
	// anonymous individual.
	RestrictDocumentAccess(ctx context.Context, id string) error

	// GetDocument retrieves document metadata by identity.
	GetDocument(ctx context.Context, id string) (*domain.AttachmentDocument, error)
}
