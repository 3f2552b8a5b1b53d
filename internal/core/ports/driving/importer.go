package driving

import (
	"context"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

// Importer runs import tasks against configured record sources.
type Importer interface {
	// Run executes one full import for the named source system and returns
	// the finalized audit record. Only configuration and auth errors are
	// returned as errors; per-record and per-window failures are recorded
	// on the audit record.
	Run(ctx context.Context, sourceType string) (*domain.TaskAuditRecord, error)

	// RunAll executes Run for every configured source, sequentially.
	RunAll(ctx context.Context) ([]domain.TaskAuditRecord, error)
}

// BackfillReport summarizes one document backfill pass.
type BackfillReport struct {
	// Candidates is how many records with an empty document list were
	// considered.
	Candidates int

	// Staged is how many attachments were downloaded and stored.
	Staged int

	// Skipped is how many candidates were skipped (no qualifying
	// attachment, or download retries exhausted).
	Skipped int
}

// Backfiller stages attachments for already-imported records that have none.
type Backfiller interface {
	// Backfill processes up to limit candidate records for the source,
	// fanning out in bounded parallel batches.
	Backfill(ctx context.Context, sourceType string, limit int) (*BackfillReport, error)
}
