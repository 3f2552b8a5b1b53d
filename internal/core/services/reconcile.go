package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
)

// reconcileOutcome says which terminal state a record reached.
type reconcileOutcome int

const (
	outcomeCreated reconcileOutcome = iota
	outcomeUpdated
)

// reconcile routes one transformed record to create or update by its
// external identity.
//
// Create persists the master plus one flavour per audience as a unit;
// publishFlavours carries the source's publication default. Update builds a
// typed patch that reattaches each existing flavour identity so audience
// views are edited in place, never recreated.
func reconcile(
	ctx context.Context,
	records driven.RecordStore,
	item driven.ImportItem,
	publishFlavours bool,
	now time.Time,
) (*domain.Record, reconcileOutcome, error) {
	rec := item.Record

	existing, err := records.FindByExternalID(ctx, rec.Schema, rec.SourceSystem, rec.SourceExternalID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, 0, fmt.Errorf("lookup %s: %w", rec.SourceExternalID, err)
	}

	if existing == nil {
		created, err := records.Create(ctx, rec, item.Flavours, publishFlavours)
		if err != nil {
			return nil, 0, fmt.Errorf("create %s: %w", rec.SourceExternalID, err)
		}
		return created, outcomeCreated, nil
	}

	patch := domain.BuildPatch(existing, rec, item.Flavours, now)
	if err := records.Update(ctx, patch); err != nil {
		return nil, 0, fmt.Errorf("update %s: %w", rec.SourceExternalID, err)
	}
	return existing, outcomeUpdated, nil
}
