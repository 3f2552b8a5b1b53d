package core

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

// Fetch retry bounds.
const (
	FetchMaxAttempts = 3
	FetchRetryDelay  = 5 * time.Second
)

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// Source is the CORE record source.
type Source struct {
	cfg    Config
	client *Client
	tokens driven.TokenProvider
	policy Policy

	now func() time.Time

	token *driven.Token
}

// NewSource creates the CORE source.
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
func (s *Source) Type() string { return domain.SourceSystemCore }

// Capabilities returns the CORE import behaviour. Unlike NRIS, new flavours
// stay unpublished until an administrator releases them.
func (s *Source) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{
		PublishesFlavours:   false,
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

// Fetch retrieves one window of permits and fans each out into a permit
// record plus one record per eligible amendment. The windowed list call is
// retried with linear backoff while the failure is transient.
func (s *Source) Fetch(ctx context.Context, window domain.ImportWindow) ([]driven.ImportItem, error) {
	if err := s.ensureToken(ctx); err != nil {
		return nil, err
	}

	policy := retry.Policy{MaxAttempts: FetchMaxAttempts, Backoff: retry.Linear(FetchRetryDelay)}

	var permits []Permit
	err := policy.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		permits, fetchErr = s.client.ListPermits(ctx, s.token.AccessToken, window)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("fetch window %s: %w", window.Start.Format(dateLayout), err)
	}

	now := s.now()
	var items []driven.ImportItem
	for i := range permits {
		permit := &permits[i]
		if !s.policy.PermitEligible(permit) {
			logger.Debug("core: dropping permit %s with type %q", permit.PermitNo, permit.PermitTypeCode)
			continue
		}

		rec, flavours, attachment := TransformPermit(permit)
		items = append(items, driven.ImportItem{Record: rec, Flavours: flavours, Attachment: attachment})

		for j := range permit.Amendments {
			amendment := &permit.Amendments[j]
			if amendment.TypeCode == "OGP" {
				continue // folded into the permit record
			}
			if !s.policy.AmendmentEligible(amendment, now) {
				logger.Debug("core: holding back amendment %s", amendment.AmendmentGUID)
				continue
			}
			aRec, aFlavours, aAttachment := TransformAmendment(permit, amendment)
			items = append(items, driven.ImportItem{Record: aRec, Flavours: aFlavours, Attachment: aAttachment})
		}
	}
	return items, nil
}

// DownloadAttachment streams the described document into scratchDir.
func (s *Source) DownloadAttachment(ctx context.Context, desc domain.AttachmentDescriptor, scratchDir string) (string, string, error) {
	if err := s.ensureToken(ctx); err != nil {
		return "", "", err
	}

	body, fileName, err := s.client.DownloadDocument(ctx, s.token.AccessToken, desc)
	if err != nil {
		return "", "", err
	}
	defer body.Close()

	path := filepath.Join(scratchDir, "core-"+desc.AttachmentID)
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

// LocateAttachment re-derives the qualifying document descriptor for an
// already-imported permit or amendment record.
func (s *Source) LocateAttachment(ctx context.Context, rec *domain.Record) (*domain.AttachmentDescriptor, error) {
	if err := s.ensureToken(ctx); err != nil {
		return nil, err
	}

	switch rec.Schema {
	case domain.KindPermit:
		permit, err := s.client.GetPermit(ctx, s.token.AccessToken, rec.SourceExternalID)
		if err != nil {
			return nil, err
		}
		for i := range permit.Amendments {
			if permit.Amendments[i].TypeCode == "OGP" {
				return qualifyingDocument(permit.PermitGUID, &permit.Amendments[i]), nil
			}
		}
		return nil, nil

	case domain.KindPermitAmendment:
		permit, err := s.client.GetPermitByAmendment(ctx, s.token.AccessToken, rec.SourceExternalID)
		if err != nil {
			return nil, err
		}
		for i := range permit.Amendments {
			if permit.Amendments[i].AmendmentGUID == rec.SourceExternalID {
				return qualifyingDocument(permit.PermitGUID, &permit.Amendments[i]), nil
			}
		}
		return nil, nil
	}

	return nil, fmt.Errorf("%w: schema %s", domain.ErrInvalidInput, rec.Schema)
}

// Close releases resources.
func (s *Source) Close() error { return nil }

func (s *Source) ensureToken(ctx context.Context) error {
	if s.token.Valid() {
		return nil
	}
	return s.Authenticate(ctx)
}
