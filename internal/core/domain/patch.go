package domain

import "time"

// RecordPatch is the typed update payload for an existing master record. It
// carries the refreshed canonical fields plus a sub-payload per flavour keyed
// by each flavour's existing identity, so audience views are edited in place
// rather than replaced.
type RecordPatch struct {
	// RecordID identifies the master record being updated.
	RecordID string

	// Refreshed canonical fields. These always overwrite on update.
	DateIssued         time.Time
	IssuingAgency      string
	Legislation        Legislation
	IssuedTo           Entity
	Location           Location
	OutcomeDescription string

	// Flavours maps each existing flavour identity to its refreshed
	// payload. Keys must be identities already attached to the record.
	Flavours map[string]FlavourPayload

	// DateUpdated is the reconciliation timestamp.
	DateUpdated time.Time
}

// BuildPatch constructs the update payload for reconciling incoming onto
// existing. It is a pure function: it reattaches each of existing's flavour
// identities to the matching audience payload from flavours and copies the
// refreshed canonical fields from incoming.
//
// Audiences present on the existing record but absent from flavours are left
// out of the patch (their stored content is preserved). Payloads for
// audiences the existing record never fanned out to are dropped; flavour
// identities are never created by an update.
func BuildPatch(existing *Record, incoming *Record, flavours []FlavourPayload, now time.Time) RecordPatch {
	patch := RecordPatch{
		RecordID:           existing.ID,
		DateIssued:         incoming.DateIssued,
		IssuingAgency:      incoming.IssuingAgency,
		Legislation:        incoming.Legislation,
		IssuedTo:           incoming.IssuedTo,
		Location:           incoming.Location,
		OutcomeDescription: incoming.OutcomeDescription,
		Flavours:           make(map[string]FlavourPayload, len(flavours)),
		DateUpdated:        now,
	}
	for _, payload := range flavours {
		if id := existing.FlavourID(payload.Audience()); id != "" {
			patch.Flavours[id] = payload
		}
	}
	return patch
}
