package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/regsync/internal/core/domain"
)

func TestEnsureReusesOrphanedDocument(t *testing.T) {
	records := memory.NewRecordStore()
	documents := memory.NewDocumentStore()
	ctx := context.Background()

	rec, err := records.Create(ctx, &domain.Record{
		Schema:           domain.KindInspection,
		SourceSystem:     domain.SourceSystemNRIS,
		SourceExternalID: "1",
		IssuedTo:         domain.Entity{Type: domain.EntityCompany, CompanyName: "Acme Mining Ltd."},
	}, nil, true)
	require.NoError(t, err)

	// A previous crash staged the document under the record-scoped name but
	// never attached it.
	orphanID, err := documents.CreateDocument(ctx, "1_final report.pdf", []byte("%PDF"), "BC Government",
		[]string{domain.RoleSysadmin}, []string{domain.RoleSysadmin}, "restricted")
	require.NoError(t, err)

	source := singleWindowSource(time.Now(), nil)
	pipeline := NewAttachmentPipeline(records, documents, t.TempDir())

	desc := domain.AttachmentDescriptor{RecordID: "1", AttachmentID: "a1", FileName: "final report.pdf"}
	id, err := pipeline.Ensure(ctx, source, desc, rec)
	require.NoError(t, err)

	assert.Equal(t, orphanID, id)
	assert.Zero(t, source.downloads, "the orphan is reused, not re-downloaded")
	assert.Equal(t, []string{orphanID}, rec.Documents)
}

func TestEnsureDoesNotReuseAnotherRecordsDocument(t *testing.T) {
	records := memory.NewRecordStore()
	documents := memory.NewDocumentStore()
	ctx := context.Background()

	// Another record already staged a document with the same upstream name.
	otherID, err := documents.CreateDocument(ctx, "1_inspection report.pdf", []byte("%PDF other"), "BC Government",
		[]string{domain.RoleSysadmin}, []string{domain.RoleSysadmin}, "restricted")
	require.NoError(t, err)

	rec, err := records.Create(ctx, &domain.Record{
		Schema:           domain.KindInspection,
		SourceSystem:     domain.SourceSystemNRIS,
		SourceExternalID: "2",
		IssuedTo:         domain.Entity{Type: domain.EntityCompany, CompanyName: "Acme Mining Ltd."},
	}, nil, true)
	require.NoError(t, err)

	source := singleWindowSource(time.Now(), nil)
	pipeline := NewAttachmentPipeline(records, documents, t.TempDir())

	desc := domain.AttachmentDescriptor{RecordID: "2", AttachmentID: "a1", FileName: "inspection report.pdf"}
	id, err := pipeline.Ensure(ctx, source, desc, rec)
	require.NoError(t, err)

	assert.NotEqual(t, otherID, id, "same-named documents stay per record")
	assert.Equal(t, 1, source.downloads)
	assert.Equal(t, []string{id}, rec.Documents)
}

func TestEnsureSkipsRecordsWithDocuments(t *testing.T) {
	source := singleWindowSource(time.Now(), nil)
	pipeline := NewAttachmentPipeline(memory.NewRecordStore(), memory.NewDocumentStore(), t.TempDir())

	rec := &domain.Record{ID: "rec-1", Documents: []string{"doc-1"}}
	id, err := pipeline.Ensure(context.Background(), source, domain.AttachmentDescriptor{}, rec)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Zero(t, source.downloads)
}

func TestEnsureExhaustedDownloadYieldsUnavailable(t *testing.T) {
	records := memory.NewRecordStore()
	ctx := context.Background()

	rec, err := records.Create(ctx, &domain.Record{
		Schema:           domain.KindInspection,
		SourceSystem:     domain.SourceSystemNRIS,
		SourceExternalID: "1",
	}, nil, true)
	require.NoError(t, err)

	source := singleWindowSource(time.Now(), nil)
	source.downloadErr = assert.AnError

	pipeline := NewAttachmentPipeline(records, memory.NewDocumentStore(), t.TempDir())
	pipeline.policy.Backoff = nil // no sleeping in tests

	_, err = pipeline.Ensure(ctx, source, domain.AttachmentDescriptor{AttachmentID: "a1"}, rec)
	assert.ErrorIs(t, err, domain.ErrAttachmentUnavailable)
	assert.Equal(t, AttachmentMaxAttempts, source.downloads)
	assert.False(t, rec.HasDocuments())
}
