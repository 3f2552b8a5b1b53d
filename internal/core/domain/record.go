package domain

import "time"

// RecordKind identifies the canonical schema of an imported record.
type RecordKind string

// Record kinds produced by the configured upstream systems.
const (
	KindInspection      RecordKind = "Inspection"
	KindPermit          RecordKind = "Permit"
	KindPermitAmendment RecordKind = "PermitAmendment"
)

// Source system identifiers. A record's (Schema, SourceSystem,
// SourceExternalID) triple is globally unique and is the idempotency key for
// reconciliation.
const (
	SourceSystemNRIS = "nris-epd"
	SourceSystemCore = "core"
)

// Legislation references the act and section a record was issued under.
type Legislation struct {
	Act        string
	Regulation string
	Section    string
}

// Location describes where the regulated activity took place.
type Location struct {
	// Description is the free-text location (mine name, address, region).
	Description string

	// Centroid is the [longitude, latitude] pair, present only when the
	// upstream record carried both coordinates as parseable numbers.
	Centroid *[2]float64
}

// Record is the canonical, store-of-record representation of an imported
// external record. It is created on first successful reconciliation and
// mutated on every subsequent one; the pipeline never deletes it.
type Record struct {
	// ID is the store-assigned identity of the master record.
	ID string

	// Schema is the record kind.
	Schema RecordKind

	// SourceSystem identifies which upstream system produced the record.
	SourceSystem string

	// SourceExternalID is the upstream unique key.
	SourceExternalID string

	// DateIssued is when the upstream activity occurred or was issued.
	DateIssued time.Time

	// IssuingAgency is the normalized display name of the issuing agency.
	IssuingAgency string

	// Author is the importing system's author label.
	Author string

	// Legislation is the act/section reference derived during transform.
	Legislation Legislation

	// IssuedTo is the entity the record was issued against.
	IssuedTo Entity

	// Location describes the site of the activity.
	Location Location

	// OutcomeDescription is the human-readable outcome synthesized from the
	// upstream status fields.
	OutcomeDescription string

	// Documents holds the IDs of staged attachment documents, in the order
	// they were staged.
	Documents []string

	// Flavours references the audience-specific views of this record.
	// Flavour identities are stable across updates.
	Flavours []FlavourRef

	// DateAdded is when the record was first reconciled.
	DateAdded time.Time

	// DateUpdated is when the record was last reconciled.
	DateUpdated time.Time
}

// ExternalKey returns the idempotency key components of the record.
func (r *Record) ExternalKey() (RecordKind, string, string) {
	return r.Schema, r.SourceSystem, r.SourceExternalID
}

// HasDocuments reports whether any attachment has been staged for the record.
// The attachment pipeline is gated on this: it only runs while the document
// list is empty.
func (r *Record) HasDocuments() bool {
	return len(r.Documents) > 0
}

// FlavourID returns the identity of the flavour for the given audience, or
// empty string if the record has no such flavour.
func (r *Record) FlavourID(kind AudienceKind) string {
	for _, f := range r.Flavours {
		if f.Audience == kind {
			return f.ID
		}
	}
	return ""
}
