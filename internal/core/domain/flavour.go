package domain

// AudienceKind enumerates the audiences a master record fans out to. Each
// audience gets its own flavour record with an independent publication state.
type AudienceKind string

const (
	// AudiencePublicNotice is the public-notice view of a record.
	AudiencePublicNotice AudienceKind = "public-notice"

	// AudienceSummary is the condensed summary view of a record.
	AudienceSummary AudienceKind = "summary"
)

// AllAudiences lists the configured audiences in fan-out order.
var AllAudiences = []AudienceKind{AudiencePublicNotice, AudienceSummary}

// FlavourPayload is the audience-specific content of a flavour record. Each
// audience kind carries its own payload type; the reconciler iterates the
// fixed audience set explicitly rather than introspecting record shapes.
type FlavourPayload interface {
	// Audience returns the audience kind this payload belongs to.
	Audience() AudienceKind
}

// NoticePayload is the public-notice flavour content.
type NoticePayload struct {
	// Summary is the short text shown on the public notice listing.
	Summary string
}

// Audience implements FlavourPayload.
func (NoticePayload) Audience() AudienceKind { return AudiencePublicNotice }

// SummaryPayload is the summary flavour content.
type SummaryPayload struct {
	// Description is the longer descriptive text for the summary view.
	Description string
}

// Audience implements FlavourPayload.
func (SummaryPayload) Audience() AudienceKind { return AudienceSummary }

// FlavourRef links a master record to one of its flavour records.
type FlavourRef struct {
	// ID is the flavour record's own identity. It is immutable once
	// created; updates reuse it, never recreate it.
	ID string

	// Audience is the audience kind of the referenced flavour.
	Audience AudienceKind
}

// FlavourRecord is a persisted audience-specific view of a master record.
type FlavourRecord struct {
	// ID is the flavour's identity.
	ID string

	// RecordID links back to the owning master record.
	RecordID string

	// Payload is the audience-specific content.
	Payload FlavourPayload

	// ReadRoles controls visibility of this flavour. It may include
	// RolePublic only when the owning record does not classify as an
	// anonymous individual.
	ReadRoles []string
}
