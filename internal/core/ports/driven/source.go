package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

// RecordSource pulls external records from one upstream system. Each source
// owns its fetch, eligibility and transform rules; the orchestrator only sees
// canonical records.
type RecordSource interface {
	// Type returns the source system identifier (e.g. domain.SourceSystemNRIS).
	Type() string

	// Capabilities returns what this source supports.
	Capabilities() SourceCapabilities

	// Authenticate acquires and caches the upstream bearer credential.
	// Returns domain.ErrConfigMissing when credentials are unset and
	// domain.ErrAuthFailed when the exchange yields no usable token; both
	// abort the run before any window is processed.
	Authenticate(ctx context.Context) error

	// Plan returns the fixed horizon start and window width for this
	// source. Window sizing is source-dependent, bounded to avoid upstream
	// timeouts.
	Plan() (start time.Time, width time.Duration)

	// Fetch retrieves, filters and transforms the records for one window.
	// Only eligible records are returned; ineligible ones are dropped
	// silently. Transient upstream failures are retried internally; the
	// returned error means the window failed after retry exhaustion.
	Fetch(ctx context.Context, window domain.ImportWindow) ([]ImportItem, error)

	// DownloadAttachment streams the attachment described by desc into
	// scratchDir and returns the local path and the upstream file name from
	// the content disposition.
	DownloadAttachment(ctx context.Context, desc domain.AttachmentDescriptor, scratchDir string) (path, fileName string, err error)

	// Close releases resources.
	Close() error
}

// AttachmentLocator is implemented by sources that can re-derive the
// qualifying attachment descriptor for an already-imported record. The
// document backfill pipeline requires it.
type AttachmentLocator interface {
	// LocateAttachment looks the record up in the upstream system and
	// returns its qualifying attachment, or nil when it exposes none.
	LocateAttachment(ctx context.Context, rec *domain.Record) (*domain.AttachmentDescriptor, error)
}

// SourceCapabilities describes source-specific import behaviour.
type SourceCapabilities struct {
	// PublishesFlavours indicates new flavours default to public for this
	// source, requiring an explicit public-read grant on create. The
	// anonymous-individual rule still applies.
	PublishesFlavours bool

	// SupportsAttachments indicates the source exposes downloadable
	// attachments.
	SupportsAttachments bool
}

// ImportItem is one eligible, transformed record ready for reconciliation.
type ImportItem struct {
	// Record is the canonical record (without store identities).
	Record *domain.Record

	// Flavours holds the audience payloads for the record, in fan-out
	// order.
	Flavours []domain.FlavourPayload

	// Attachment describes the qualifying upstream attachment, nil when
	// the record exposes none.
	Attachment *domain.AttachmentDescriptor
}
