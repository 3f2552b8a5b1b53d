package nris

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
	"github.com/custodia-labs/regsync/internal/logger"
	"github.com/custodia-labs/regsync/internal/retry"
)

// Fetch retry bounds. Backoff grows linearly with the attempt number.
const (
	FetchMaxAttempts = 3
	FetchRetryDelay  = 5 * time.Second
)

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// Source is the NRIS record source.
type Source struct {
	cfg    Config
	client *APIClient
	tokens driven.TokenProvider
	policy Policy

	// now is injected for eligibility tests.
	now func() time.Time

	token *driven.Token
}

// NewSource creates the NRIS source.
func NewSource(cfg Config) *Source {
	return &Source{
		cfg:    cfg,
		client: NewClient(cfg.APIURL),
		tokens: NewTokenProvider(cfg),
		policy: DefaultPolicy(),
		now:    time.Now,
	}
}

// Type returns the source system identifier.
func (s *Source) Type() string { return domain.SourceSystemNRIS }

// Capabilities returns the NRIS import behaviour: flavours default to
// public, and inspections carry downloadable final reports.
func (s *Source) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{
		PublishesFlavours:   true,
		SupportsAttachments: true,
	}
}

// Authenticate acquires and caches the bearer token for the run.
func (s *Source) Authenticate(ctx context.Context) error {
	token, err := s.tokens.Acquire(ctx)
	if err != nil {
		return err
	}
	s.token = token
	return nil
}

// Plan returns the fixed horizon start and window width.
func (s *Source) Plan() (time.Time, time.Duration) {
	return s.cfg.horizonStart(), s.cfg.windowWidth()
}

// Fetch retrieves, filters and transforms one window of inspections. The
// windowed list call is retried with linear backoff while the failure is
// transient; the returned error means the window failed.
func (s *Source) Fetch(ctx context.Context, window domain.ImportWindow) ([]driven.ImportItem, error) {
	if err := s.ensureToken(ctx); err != nil {
		return nil, err
	}

	policy := retry.Policy{MaxAttempts: FetchMaxAttempts, Backoff: retry.Linear(FetchRetryDelay)}

	var inspections []Inspection
	err := policy.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		inspections, fetchErr = s.client.ListInspections(ctx, s.token.AccessToken, window)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("fetch window %s: %w", window.Start.Format(dateLayout), err)
	}

	now := s.now()
	items := make([]driven.ImportItem, 0, len(inspections))
	for i := range inspections {
		insp := &inspections[i]
		if !s.policy.IsEligible(insp, now) {
			logger.Debug("nris: dropping ineligible assessment %d", insp.AssessmentID)
			continue
		}
		rec, flavours, attachment := Transform(insp)
		items = append(items, driven.ImportItem{Record: rec, Flavours: flavours, Attachment: attachment})
	}
	return items, nil
}

// DownloadAttachment streams the described attachment into scratchDir.
func (s *Source) DownloadAttachment(ctx context.Context, desc domain.AttachmentDescriptor, scratchDir string) (string, string, error) {
	if err := s.ensureToken(ctx); err != nil {
		return "", "", err
	}

	body, fileName, err := s.client.DownloadAttachment(ctx, s.token.AccessToken, desc)
	if err != nil {
		return "", "", err
	}
	defer body.Close()

	path := filepath.Join(scratchDir, fmt.Sprintf("nris-%s-%s", desc.RecordID, desc.AttachmentID))
	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create scratch file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", "", fmt.Errorf("write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("close scratch file: %w", err)
	}

	return path, fileName, nil
}

// LocateAttachment re-derives the qualifying attachment descriptor for an
// already-imported record, for the document backfill pipeline.
func (s *Source) LocateAttachment(ctx context.Context, rec *domain.Record) (*domain.AttachmentDescriptor, error) {
	if err := s.ensureToken(ctx); err != nil {
		return nil, err
	}

	insp, err := s.client.GetInspection(ctx, s.token.AccessToken, rec.SourceExternalID)
	if err != nil {
		return nil, err
	}
	return qualifyingAttachment(insp, rec.SourceExternalID), nil
}

// Close releases resources.
func (s *Source) Close() error { return nil }

// ensureToken re-acquires the bearer token when a window crosses its expiry.
func (s *Source) ensureToken(ctx context.Context) error {
	if s.token.Valid() {
		return nil
	}
	return s.Authenticate(ctx)
}
