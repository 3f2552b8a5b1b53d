package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
	"github.com/custodia-labs/regsync/internal/logger"
	"github.com/custodia-labs/regsync/internal/retry"
)

// Attachment download retry bounds.
const (
	AttachmentMaxAttempts = 3
	AttachmentRetryDelay  = 2 * time.Second
)

// AttachmentPipeline stages upstream binaries into the document store.
type AttachmentPipeline struct {
	records    driven.RecordStore
	documents  driven.DocumentStore
	scratchDir string
	policy     retry.Policy
}

// NewAttachmentPipeline creates the attachment pipeline writing scratch
// files under scratchDir.
func NewAttachmentPipeline(records driven.RecordStore, documents driven.DocumentStore, scratchDir string) *AttachmentPipeline {
	return &AttachmentPipeline{
		records:    records,
		documents:  documents,
		scratchDir: scratchDir,
		policy:     retry.Policy{MaxAttempts: AttachmentMaxAttempts, Backoff: retry.Fixed(AttachmentRetryDelay)},
	}
}

// Ensure downloads and stages the described attachment for rec. It is only
// invoked while rec's document list is empty; a record that already carries a
// document is returned untouched.
//
// A download that exhausts its retries yields domain.ErrAttachmentUnavailable:
// the attachment is skipped, the record is not failed. The scratch file is
// removed on success and failure alike.
func (p *AttachmentPipeline) Ensure(
	ctx context.Context,
	source driven.RecordSource,
	desc domain.AttachmentDescriptor,
	rec *domain.Record,
) (string, error) {
	if rec.HasDocuments() {
		return "", nil
	}

	// An earlier crash may have staged the document without attaching it.
	// Reuse the orphan instead of re-downloading.
	if desc.FileName != "" {
		if id, err := p.documents.FindDocumentByName(ctx, stagedFileName(rec, desc.FileName)); err == nil {
			logger.Debug("attachments: reusing staged document %s for %s", id, rec.SourceExternalID)
			return id, p.attach(ctx, rec, id)
		}
	}

	var path, fileName string
	err := p.policy.Do(ctx, func(ctx context.Context) error {
		var downloadErr error
		path, fileName, downloadErr = source.DownloadAttachment(ctx, desc, p.scratchDir)
		return downloadErr
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrAttachmentUnavailable, desc.AttachmentID, err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read scratch file: %w", err)
	}

	readRoles := domain.DocumentReadRoles(rec.IssuedTo)
	writeRoles := []string{domain.RoleSysadmin}
	aclHint := "restricted"
	if !rec.IssuedTo.IsAnonymous() {
		aclHint = "public-read"
	}

	id, err := p.documents.CreateDocument(ctx, stagedFileName(rec, fileName), data,
		rec.Author, readRoles, writeRoles, aclHint)
	if err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}

	return id, p.attach(ctx, rec, id)
}

// stagedFileName scopes the stored name to the owning record, so the orphan
// lookup never matches a same-named document belonging to another record.
func stagedFileName(rec *domain.Record, name string) string {
	return domain.SanitizeFileName(rec.SourceExternalID + "_" + name)
}

// attach records the staged document identity on the canonical record.
func (p *AttachmentPipeline) attach(ctx context.Context, rec *domain.Record, documentID string) error {
	if err := p.records.AttachDocument(ctx, rec.ID, documentID); err != nil {
		return fmt.Errorf("attach document: %w", err)
	}
	rec.Documents = append(rec.Documents, documentID)
	return nil
}
