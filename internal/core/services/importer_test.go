package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
)

// fakeSource is a scriptable RecordSource for orchestrator tests.
type fakeSource struct {
	typ     string
	caps    driven.SourceCapabilities
	start   time.Time
	width   time.Duration
	authErr error

	// fetch is called once per window.
	fetch func(window domain.ImportWindow) ([]driven.ImportItem, error)

	// locate serves the AttachmentLocator path when set.
	locate func(rec *domain.Record) (*domain.AttachmentDescriptor, error)

	downloads   int
	downloadErr error
}

var _ driven.RecordSource = (*fakeSource)(nil)

func (s *fakeSource) Type() string { return s.typ }

func (s *fakeSource) Capabilities() driven.SourceCapabilities { return s.caps }

func (s *fakeSource) Authenticate(context.Context) error { return s.authErr }

func (s *fakeSource) Plan() (time.Time, time.Duration) { return s.start, s.width }

func (s *fakeSource) Close() error { return nil }

func (s *fakeSource) Fetch(_ context.Context, window domain.ImportWindow) ([]driven.ImportItem, error) {
	return s.fetch(window)
}

func (s *fakeSource) DownloadAttachment(_ context.Context, desc domain.AttachmentDescriptor, scratchDir string) (string, string, error) {
	s.downloads++
	if s.downloadErr != nil {
		return "", "", s.downloadErr
	}
	path := filepath.Join(scratchDir, "fake-"+desc.AttachmentID)
	if err := os.WriteFile(path, []byte("%PDF"), 0600); err != nil {
		return "", "", err
	}
	return path, desc.FileName, nil
}

func (s *fakeSource) LocateAttachment(_ context.Context, rec *domain.Record) (*domain.AttachmentDescriptor, error) {
	return s.locate(rec)
}

// failingRecordStore fails Create for one external ID.
type failingRecordStore struct {
	driven.RecordStore
	failID string
}

func (s *failingRecordStore) Create(ctx context.Context, rec *domain.Record, flavours []domain.FlavourPayload, publishFlavours bool) (*domain.Record, error) {
	if rec.SourceExternalID == s.failID {
		return nil, errors.New("store rejected record")
	}
	return s.RecordStore.Create(ctx, rec, flavours, publishFlavours)
}

func importItems(n int) []driven.ImportItem {
	items := make([]driven.ImportItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, driven.ImportItem{
			Record: &domain.Record{
				Schema:           domain.KindInspection,
				SourceSystem:     domain.SourceSystemNRIS,
				SourceExternalID: fmt.Sprintf("%d", i),
				IssuedTo:         domain.Entity{Type: domain.EntityCompany, CompanyName: "Acme Mining Ltd."},
			},
			Flavours: []domain.FlavourPayload{
				domain.NoticePayload{Summary: "notice"},
				domain.SummaryPayload{Description: "summary"},
			},
		})
	}
	return items
}

func singleWindowSource(now time.Time, items []driven.ImportItem) *fakeSource {
	return &fakeSource{
		typ:   domain.SourceSystemNRIS,
		caps:  driven.SourceCapabilities{PublishesFlavours: true, SupportsAttachments: true},
		start: now.Add(-24 * time.Hour),
		width: 24 * time.Hour,
		fetch: func(domain.ImportWindow) ([]driven.ImportItem, error) {
			return items, nil
		},
	}
}

func newTestImporter(source driven.RecordSource, records driven.RecordStore, audits driven.AuditStore, scratch string, now time.Time) *Importer {
	documents := memory.NewDocumentStore()
	attachments := NewAttachmentPipeline(records, documents, scratch)
	imp := NewImporter([]driven.RecordSource{source}, records, documents, audits, attachments, true)
	imp.now = func() time.Time { return now }
	return imp
}

func TestImporterRunCompletes(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := memory.NewRecordStore()
	audits := memory.NewAuditStore()
	source := singleWindowSource(now, importItems(2))

	imp := newTestImporter(source, records, audits, t.TempDir(), now)

	audit, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, audit.Status)
	assert.Equal(t, 2, audit.ItemsProcessed)
	assert.Equal(t, 2, audit.ItemTotal)
	assert.Empty(t, audit.RecordErrors)
	assert.False(t, audit.EndedAt.IsZero())

	// The audit trail is durable, not just returned.
	stored, err := audits.GetTaskRecord(context.Background(), audit.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	rec, err := records.FindByExternalID(context.Background(), domain.KindInspection, domain.SourceSystemNRIS, "1")
	require.NoError(t, err)
	assert.Len(t, rec.Flavours, 2)
}

func TestImporterPartialFailureIsolation(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := &failingRecordStore{RecordStore: memory.NewRecordStore(), failID: "3"}
	audits := memory.NewAuditStore()
	source := singleWindowSource(now, importItems(5))

	imp := newTestImporter(source, records, audits, t.TempDir(), now)

	audit, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err, "per-record failures do not fail the run")

	assert.Equal(t, domain.StatusCompleted, audit.Status)
	assert.Equal(t, 4, audit.ItemsProcessed)
	assert.Equal(t, 5, audit.ItemTotal)
	require.Len(t, audit.RecordErrors, 1)
	assert.Equal(t, "3", audit.RecordErrors[0].ExternalID)

	// Records after the failed one were still processed.
	_, err = records.FindByExternalID(context.Background(), domain.KindInspection, domain.SourceSystemNRIS, "5")
	require.NoError(t, err)
}

func TestImporterRerunIsIdempotent(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := memory.NewRecordStore()
	audits := memory.NewAuditStore()
	source := singleWindowSource(now, importItems(3))

	imp := newTestImporter(source, records, audits, t.TempDir(), now)

	_, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err)

	first, err := records.FindByExternalID(context.Background(), domain.KindInspection, domain.SourceSystemNRIS, "1")
	require.NoError(t, err)

	audit, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, audit.Status)
	assert.Equal(t, 3, audit.ItemsProcessed, "reruns update, they do not duplicate")

	second, err := records.FindByExternalID(context.Background(), domain.KindInspection, domain.SourceSystemNRIS, "1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Flavours, second.Flavours, "flavour identities are stable across reruns")
}

func TestImporterWindowFailureAnnotatesAndContinues(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := memory.NewRecordStore()
	audits := memory.NewAuditStore()

	windowCount := 0
	source := &fakeSource{
		typ:   domain.SourceSystemNRIS,
		caps:  driven.SourceCapabilities{PublishesFlavours: true},
		start: now.Add(-48 * time.Hour),
		width: 24 * time.Hour,
		fetch: func(domain.ImportWindow) ([]driven.ImportItem, error) {
			windowCount++
			if windowCount == 1 {
				return nil, errors.New("upstream timeout")
			}
			return importItems(2), nil
		},
	}

	imp := newTestImporter(source, records, audits, t.TempDir(), now)

	audit, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, audit.Status)
	assert.Equal(t, 2, audit.ItemTotal, "the failed window's items never enter the total")
	assert.Equal(t, 2, audit.ItemsProcessed)
	assert.Contains(t, audit.Message, "failed")
	assert.Contains(t, audit.Message, "upstream timeout")
}

func TestImporterConfigErrorAbortsRun(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	audits := memory.NewAuditStore()

	source := singleWindowSource(now, nil)
	source.authErr = fmt.Errorf("username: %w", domain.ErrConfigMissing)

	imp := newTestImporter(source, memory.NewRecordStore(), audits, t.TempDir(), now)

	audit, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.Error(t, err)
	require.NotNil(t, audit)
	assert.Equal(t, domain.StatusConfigError, audit.Status)

	stored, storeErr := audits.GetTaskRecord(context.Background(), audit.ID)
	require.NoError(t, storeErr)
	assert.Equal(t, domain.StatusConfigError, stored.Status)
}

func TestImporterAuthErrorAbortsRun(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	source := singleWindowSource(now, nil)
	source.authErr = domain.ErrAuthFailed

	imp := newTestImporter(source, memory.NewRecordStore(), memory.NewAuditStore(), t.TempDir(), now)

	audit, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.Error(t, err)
	assert.Equal(t, domain.StatusAuthError, audit.Status)
}

func TestImporterUnknownSource(t *testing.T) {
	imp := NewImporter(nil, memory.NewRecordStore(), nil, memory.NewAuditStore(), nil, false)
	_, err := imp.Run(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImporterStagesAttachments(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := memory.NewRecordStore()
	audits := memory.NewAuditStore()

	items := importItems(1)
	items[0].Attachment = &domain.AttachmentDescriptor{
		RecordID:     "1",
		AttachmentID: "9001",
		FileName:     "final-report.pdf",
	}
	source := singleWindowSource(now, items)

	imp := newTestImporter(source, records, audits, t.TempDir(), now)

	_, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err)
	assert.Equal(t, 1, source.downloads)

	rec, err := records.FindByExternalID(context.Background(), domain.KindInspection, domain.SourceSystemNRIS, "1")
	require.NoError(t, err)
	require.Len(t, rec.Documents, 1)

	// The second run reconciles again but never re-downloads: the record
	// already carries its document.
	_, err = imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err)
	assert.Equal(t, 1, source.downloads)

	rec, err = records.FindByExternalID(context.Background(), domain.KindInspection, domain.SourceSystemNRIS, "1")
	require.NoError(t, err)
	assert.Len(t, rec.Documents, 1)
}

func TestImporterAttachmentFailureDoesNotFailRecord(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := memory.NewRecordStore()

	items := importItems(1)
	items[0].Attachment = &domain.AttachmentDescriptor{RecordID: "1", AttachmentID: "9001"}
	source := singleWindowSource(now, items)
	source.downloadErr = errors.New("404 gone")

	imp := newTestImporter(source, records, memory.NewAuditStore(), t.TempDir(), now)
	imp.attachments.policy.Backoff = nil // no sleeping in tests

	audit, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, audit.Status)
	assert.Equal(t, 1, audit.ItemsProcessed)
	assert.Empty(t, audit.RecordErrors, "a missing attachment is not a record failure")

	rec, err := records.FindByExternalID(context.Background(), domain.KindInspection, domain.SourceSystemNRIS, "1")
	require.NoError(t, err)
	assert.False(t, rec.HasDocuments())
}

func TestImporterAttachmentsDisabled(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	items := importItems(1)
	items[0].Attachment = &domain.AttachmentDescriptor{RecordID: "1", AttachmentID: "9001"}
	source := singleWindowSource(now, items)

	records := memory.NewRecordStore()
	imp := NewImporter([]driven.RecordSource{source}, records, nil, memory.NewAuditStore(), nil, false)
	imp.now = func() time.Time { return now }

	_, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	require.NoError(t, err)
	assert.Zero(t, source.downloads)
}

func TestImporterReidentifiedRecordLosesPublicAccess(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := memory.NewRecordStore()
	documents := memory.NewDocumentStore()
	audits := memory.NewAuditStore()
	ctx := context.Background()

	items := importItems(1)
	items[0].Attachment = &domain.AttachmentDescriptor{
		RecordID:     "1",
		AttachmentID: "9001",
		FileName:     "final-report.pdf",
	}
	source := singleWindowSource(now, items)

	attachments := NewAttachmentPipeline(records, documents, t.TempDir())
	imp := NewImporter([]driven.RecordSource{source}, records, documents, audits, attachments, true)
	imp.now = func() time.Time { return now }

	_, err := imp.Run(ctx, domain.SourceSystemNRIS)
	require.NoError(t, err)

	rec, err := records.FindByExternalID(ctx, domain.KindInspection, domain.SourceSystemNRIS, "1")
	require.NoError(t, err)
	require.Len(t, rec.Documents, 1)

	flavour, err := records.GetFlavour(ctx, rec.Flavours[0].ID)
	require.NoError(t, err)
	require.Contains(t, flavour.ReadRoles, domain.RolePublic)

	// The next import resolves the owner to an individual with no name
	// fields. Public access granted while the record was named must go.
	items[0].Record.IssuedTo = domain.Entity{Type: domain.EntityIndividual}
	_, err = imp.Run(ctx, domain.SourceSystemNRIS)
	require.NoError(t, err)

	for _, ref := range rec.Flavours {
		flavour, err := records.GetFlavour(ctx, ref.ID)
		require.NoError(t, err)
		assert.NotContains(t, flavour.ReadRoles, domain.RolePublic)
	}

	doc, err := documents.GetDocument(ctx, rec.Documents[0])
	require.NoError(t, err)
	assert.NotContains(t, doc.ReadRoles, domain.RolePublic)
}

func TestImporterRejectsOverlappingRun(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	entered := make(chan struct{})
	release := make(chan struct{})

	source := singleWindowSource(now, nil)
	source.fetch = func(domain.ImportWindow) ([]driven.ImportItem, error) {
		close(entered)
		<-release
		return nil, nil
	}

	imp := newTestImporter(source, memory.NewRecordStore(), memory.NewAuditStore(), t.TempDir(), now)

	done := make(chan error, 1)
	go func() {
		_, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
		done <- err
	}()
	<-entered

	_, err := imp.Run(context.Background(), domain.SourceSystemNRIS)
	assert.ErrorIs(t, err, domain.ErrImportInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestImporterRunAllCollectsAudits(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	nrisSource := singleWindowSource(now, importItems(1))
	coreSource := singleWindowSource(now, nil)
	coreSource.typ = domain.SourceSystemCore
	coreSource.authErr = domain.ErrAuthFailed

	records := memory.NewRecordStore()
	documents := memory.NewDocumentStore()
	audits := memory.NewAuditStore()
	attachments := NewAttachmentPipeline(records, documents, t.TempDir())
	imp := NewImporter([]driven.RecordSource{nrisSource, coreSource}, records, documents, audits, attachments, true)
	imp.now = func() time.Time { return now }

	results, err := imp.RunAll(context.Background())
	require.Error(t, err, "the core auth failure surfaces after all sources ran")
	require.Len(t, results, 2)
	assert.Equal(t, domain.StatusCompleted, results[0].Status)
	assert.Equal(t, domain.StatusAuthError, results[1].Status)
}
