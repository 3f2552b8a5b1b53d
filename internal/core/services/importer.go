package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
	"github.com/custodia-labs/regsync/internal/core/ports/driving"
	"github.com/custodia-labs/regsync/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.Importer = (*Importer)(nil)

// Importer orchestrates one import run per source: window planning, fetch,
// reconciliation, attachment staging and durable progress reporting.
type Importer struct {
	sources     []driven.RecordSource
	records     driven.RecordStore
	documents   driven.DocumentStore
	audits      driven.AuditStore
	attachments *AttachmentPipeline

	// fetchAttachments gates binary staging entirely (feature flag).
	fetchAttachments bool

	// now is injected for tests.
	now func() time.Time

	// active guards against overlapping runs for the same source.
	mu     sync.Mutex
	active map[string]bool
}

// NewImporter creates the import orchestrator. attachments may be nil when
// binary staging is disabled; documents may be nil when no documents were
// ever staged.
func NewImporter(
	sources []driven.RecordSource,
	records driven.RecordStore,
	documents driven.DocumentStore,
	audits driven.AuditStore,
	attachments *AttachmentPipeline,
	fetchAttachments bool,
) *Importer {
	return &Importer{
		sources:          sources,
		records:          records,
		documents:        documents,
		audits:           audits,
		attachments:      attachments,
		fetchAttachments: fetchAttachments && attachments != nil,
		now:              time.Now,
		active:           make(map[string]bool),
	}
}

// Run executes one full import for the named source system. At most one run
// per source may be active at a time.
func (imp *Importer) Run(ctx context.Context, sourceType string) (*domain.TaskAuditRecord, error) {
	source, err := imp.source(sourceType)
	if err != nil {
		return nil, err
	}
	if err := imp.begin(sourceType); err != nil {
		return nil, err
	}
	defer imp.end(sourceType)

	audit := &domain.TaskAuditRecord{
		Source:    sourceType,
		Status:    domain.StatusRunning,
		StartedAt: imp.now(),
	}
	auditID, err := imp.audits.CreateTaskRecord(ctx, audit)
	if err != nil {
		return nil, fmt.Errorf("create audit record: %w", err)
	}
	audit.ID = auditID

	if err := source.Authenticate(ctx); err != nil {
		status := domain.StatusAuthError
		if errors.Is(err, domain.ErrConfigMissing) {
			status = domain.StatusConfigError
		}
		imp.finalize(ctx, audit, status, &progress{})
		return audit, err
	}

	start, width := source.Plan()
	windows := domain.Windows(start, imp.now(), width)
	logger.Info("%s: importing %d windows from %s", sourceType, len(windows), start.Format("2006-01-02"))

	caps := source.Capabilities()
	prog := &progress{}

	// Windows run strictly sequentially: each window's counts must be
	// durable before the next begins so a crash leaves an accurate trail.
	for _, window := range windows {
		imp.runWindow(ctx, source, caps, window, prog)

		if err := imp.audits.UpdateTaskRecord(ctx, audit.ID, prog.patch()); err != nil {
			logger.Warn("%s: persisting progress: %v", sourceType, err)
		}

		if ctx.Err() != nil {
			imp.finalize(ctx, audit, domain.StatusFailed, prog)
			return audit, ctx.Err()
		}
	}

	// Per-record failures do not demote the run; they are surfaced through
	// the audit record and logs.
	imp.finalize(ctx, audit, domain.StatusCompleted, prog)
	logger.Info("%s: import complete: %d/%d records, %d errors",
		sourceType, prog.processed, prog.total, len(prog.errors))
	return audit, nil
}

// RunAll executes Run for every configured source, sequentially.
func (imp *Importer) RunAll(ctx context.Context) ([]domain.TaskAuditRecord, error) {
	var audits []domain.TaskAuditRecord
	var errs []error

	for _, source := range imp.sources {
		audit, err := imp.Run(ctx, source.Type())
		if audit != nil {
			audits = append(audits, *audit)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("import %s: %w", source.Type(), err))
		}
	}

	return audits, errors.Join(errs...)
}

// runWindow fetches and reconciles one window into the accumulator.
func (imp *Importer) runWindow(
	ctx context.Context,
	source driven.RecordSource,
	caps driven.SourceCapabilities,
	window domain.ImportWindow,
	prog *progress,
) {
	items, err := source.Fetch(ctx, window)
	if err != nil {
		// Retries are exhausted inside the source; the window fails as
		// a unit and the run moves on. Its items never enter the total.
		logger.Warn("%s: %v", source.Type(), err)
		prog.windowFailed(window, err)
		return
	}

	prog.addWindow(len(items))

	for _, item := range items {
		rec, outcome, err := reconcile(ctx, imp.records, item, caps.PublishesFlavours, imp.now())
		if err != nil {
			logger.Error("%s: record %s: %v", source.Type(), item.Record.SourceExternalID, err)
			prog.recordFailed(item.Record.SourceExternalID, err)
			continue
		}
		prog.recordDone()

		// A record re-identified as an anonymous individual must not keep
		// public access on documents staged while it was named. The store
		// handles the flavours.
		if outcome == outcomeUpdated && item.Record.IssuedTo.IsAnonymous() {
			imp.restrictDocuments(ctx, source.Type(), rec)
		}

		if imp.fetchAttachments && caps.SupportsAttachments && item.Attachment != nil {
			if _, err := imp.attachments.Ensure(ctx, source, *item.Attachment, rec); err != nil {
				// The record itself reconciled; it just proceeds
				// without the attachment.
				logger.Warn("%s: record %s: %v", source.Type(), rec.SourceExternalID, err)
			}
		}
	}
}

// finalize stamps the terminal status and end time on the audit record. The
// write must land even when the run context was cancelled.
func (imp *Importer) finalize(ctx context.Context, audit *domain.TaskAuditRecord, status domain.TaskStatus, prog *progress) {
	ctx = context.WithoutCancel(ctx)
	ended := imp.now()
	patch := prog.patch()
	patch.Status = &status
	patch.EndedAt = &ended

	if err := imp.audits.UpdateTaskRecord(ctx, audit.ID, patch); err != nil {
		logger.Warn("finalizing audit record %s: %v", audit.ID, err)
	}

	audit.Status = status
	audit.ItemsProcessed = prog.processed
	audit.ItemTotal = prog.total
	audit.Message = prog.message
	audit.RecordErrors = prog.errors
	audit.EndedAt = ended
}

// restrictDocuments strips public access from the record's staged documents.
func (imp *Importer) restrictDocuments(ctx context.Context, sourceType string, rec *domain.Record) {
	if imp.documents == nil {
		return
	}
	for _, documentID := range rec.Documents {
		if err := imp.documents.RestrictDocumentAccess(ctx, documentID); err != nil {
			logger.Warn("%s: record %s: restricting document %s: %v",
				sourceType, rec.SourceExternalID, documentID, err)
		}
	}
}

// begin marks a run active for the source.
func (imp *Importer) begin(sourceType string) error {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if imp.active[sourceType] {
		return fmt.Errorf("%w: %s", domain.ErrImportInProgress, sourceType)
	}
	imp.active[sourceType] = true
	return nil
}

func (imp *Importer) end(sourceType string) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	delete(imp.active, sourceType)
}

// source resolves a configured source by type.
func (imp *Importer) source(sourceType string) (driven.RecordSource, error) {
	for _, s := range imp.sources {
		if s.Type() == sourceType {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: source %q", domain.ErrNotFound, sourceType)
}
