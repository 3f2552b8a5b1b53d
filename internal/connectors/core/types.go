package core

// Permit mirrors one permit record of the CORE mines export, including its
// amendment history.
type Permit struct {
	PermitGUID string `json:"permit_guid"`
	PermitNo   string `json:"permit_no"`

	// PermitTypeCode is checked against the source's allow-list.
	PermitTypeCode string `json:"permit_type_code"`

	// PermitStatusCode is "O" (open) or "C" (closed).
	PermitStatusCode string `json:"permit_status_code"`

	// MineName and coordinates locate the permitted mine.
	MineName  string `json:"mine_name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`

	// Permittee is the current permit holder.
	Permittee Permittee `json:"permittee"`

	Amendments []Amendment `json:"amendments"`
}

// Permittee is the party holding the permit.
type Permittee struct {
	// PartyTypeCode is "ORG" or "PER".
	PartyTypeCode string `json:"party_type_code"`

	PartyName  string `json:"party_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
}

// Amendment is one issuance on a permit: the original permit or a later
// amendment.
type Amendment struct {
	AmendmentGUID string `json:"permit_amendment_guid"`

	// TypeCode is "OGP" for the original permit, "AMD" for amendments.
	TypeCode string `json:"permit_amendment_type_code"`

	IssueDate   string `json:"issue_date"`
	Description string `json:"description"`

	Documents []Document `json:"related_documents"`
}

// Document is one file attached to an amendment.
type Document struct {
	DocumentGUID string `json:"document_guid"`
	FileName     string `json:"document_name"`
	MimeType     string `json:"mime_type"`
}
