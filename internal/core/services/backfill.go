package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
	"github.com/custodia-labs/regsync/internal/core/ports/driving"
	"github.com/custodia-labs/regsync/internal/logger"
)

// Ensure Backfill implements the interface.
var _ driving.Backfiller = (*Backfill)(nil)

// Backfill stages attachments for already-imported records whose document
// list is empty. It is the one parallel piece of the pipeline: records fan
// out in fixed-size batches, each batch awaited before the next starts, so
// concurrent connections to the upstream system and to durable storage stay
// bounded.
type Backfill struct {
	sources     []driven.RecordSource
	records     driven.RecordStore
	attachments *AttachmentPipeline

	// concurrency is the batch size. Default 1: fully sequential.
	concurrency int
}

// NewBackfill creates the document backfill service.
func NewBackfill(sources []driven.RecordSource, records driven.RecordStore, attachments *AttachmentPipeline, concurrency int) *Backfill {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Backfill{
		sources:     sources,
		records:     records,
		attachments: attachments,
		concurrency: concurrency,
	}
}

// Backfill processes up to limit candidate records for the source.
func (b *Backfill) Backfill(ctx context.Context, sourceType string, limit int) (*driving.BackfillReport, error) {
	source, err := b.source(sourceType)
	if err != nil {
		return nil, err
	}
	locator, ok := source.(driven.AttachmentLocator)
	if !ok {
		return nil, fmt.Errorf("%w: source %q cannot locate attachments", domain.ErrInvalidInput, sourceType)
	}

	if err := source.Authenticate(ctx); err != nil {
		return nil, err
	}

	candidates, err := b.records.ListMissingDocuments(ctx, sourceType, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	report := &driving.BackfillReport{Candidates: len(candidates)}
	var mu sync.Mutex

	for start := 0; start < len(candidates); start += b.concurrency {
		end := start + b.concurrency
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		g, gctx := errgroup.WithContext(ctx)
		for i := range batch {
			rec := &batch[i]
			g.Go(func() error {
				staged := b.backfillOne(gctx, source, locator, rec)
				mu.Lock()
				if staged {
					report.Staged++
				} else {
					report.Skipped++
				}
				mu.Unlock()
				return nil
			})
		}
		// Workers never return errors; Wait only propagates ctx
		// cancellation.
		if err := g.Wait(); err != nil {
			return report, err
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	return report, nil
}

// backfillOne stages the attachment for a single record. Failures skip the
// record; the backfill run keeps going.
func (b *Backfill) backfillOne(ctx context.Context, source driven.RecordSource, locator driven.AttachmentLocator, rec *domain.Record) bool {
	desc, err := locator.LocateAttachment(ctx, rec)
	if err != nil {
		logger.Warn("backfill: record %s: %v", rec.SourceExternalID, err)
		return false
	}
	if desc == nil {
		logger.Debug("backfill: record %s exposes no qualifying attachment", rec.SourceExternalID)
		return false
	}

	if _, err := b.attachments.Ensure(ctx, source, *desc, rec); err != nil {
		logger.Warn("backfill: record %s: %v", rec.SourceExternalID, err)
		return false
	}
	return true
}

func (b *Backfill) source(sourceType string) (driven.RecordSource, error) {
	for _, s := range b.sources {
		if s.Type() == sourceType {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: source %q", domain.ErrNotFound, sourceType)
}
