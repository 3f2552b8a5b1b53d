package nris

// Inspection mirrors one record of the NRIS EPD assessments export. Fields
// not consumed by the transform are omitted from the binding.
type Inspection struct {
	AssessmentID        int64  `json:"assessmentId"`
	AssessmentDate      string `json:"assessmentDate"`
	AssessmentStatus    string `json:"assessmentStatus"`
	AssessmentSubStatus string `json:"assessmentSubStatus"`

	Inspection InspectionDetail `json:"inspection"`

	// Agency is the issuing office name as exported; legacy office names
	// are normalized during transform.
	Agency string `json:"agencyName"`

	// RequirementSource keys the legislation lookup.
	RequirementSource string `json:"requirementSource"`

	// FindingsDescription is the inspector's free-text findings.
	FindingsDescription string `json:"findingsDescription"`

	Client      []Client     `json:"client"`
	Location    Location     `json:"location"`
	Attachments []Attachment `json:"attachment"`
}

// InspectionDetail carries the inspection sub-record.
type InspectionDetail struct {
	// InspectionType distinguishes inspections from audits.
	InspectionType string `json:"inspectionType"`

	// InspectionSubType is the regulated sector (Mine, Forestry, ...).
	InspectionSubType string `json:"inspectionSubType"`

	// InspectionReportSentDate is when the report was sent to the client;
	// starts the response grace period.
	InspectionReportSentDate string `json:"inspctReportSentDate"`
}

// Client is one party the inspection was carried out against.
type Client struct {
	// ClientType is the upstream type code ("C" corporation, "I"
	// individual, "O" other organization).
	ClientType string `json:"clientType"`

	OrgName    string `json:"orgName"`
	FirstName  string `json:"individualFirstName"`
	MiddleName string `json:"individualMiddleName"`
	LastName   string `json:"individualLastName"`
}

// Location is the inspected site.
type Location struct {
	Description string `json:"locationDescription"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
}

// Attachment is one attachment descriptor on an inspection.
type Attachment struct {
	AttachmentID int64  `json:"attachmentId"`
	FileName     string `json:"fileName"`
	FileType     string `json:"fileType"`

	// AttachmentType marks the role of the file; only final reports are
	// staged.
	AttachmentType string `json:"attachmentType"`
}
