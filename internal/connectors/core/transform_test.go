package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

func samplePermit() *Permit {
	return &Permit{
		PermitGUID:       "permit-guid-1",
		PermitNo:         "M-2024-017",
		PermitTypeCode:   "M",
		PermitStatusCode: "O",
		MineName:         "Highland Valley Copper",
		Latitude:         "50.48",
		Longitude:        "-121.03",
		Permittee: Permittee{
			PartyTypeCode: "ORG",
			PartyName:     "Acme Mining Ltd.",
		},
		Amendments: []Amendment{
			{
				AmendmentGUID: "amendment-guid-0",
				TypeCode:      "OGP",
				IssueDate:     "2020-05-01",
				Documents: []Document{
					{DocumentGUID: "doc-guid-1", FileName: "permit package.pdf", MimeType: "application/pdf"},
				},
			},
			{
				AmendmentGUID: "amendment-guid-1",
				TypeCode:      "AMD",
				IssueDate:     "2024-02-10",
				Description:   "Expanded tailings storage",
				Documents: []Document{
					{DocumentGUID: "doc-guid-2", FileName: "amendment.docx", MimeType: "application/msword"},
					{DocumentGUID: "doc-guid-3", FileName: "amendment.pdf", MimeType: "application/pdf"},
				},
			},
		},
	}
}

func TestTransformPermitUsesOriginalIssuance(t *testing.T) {
	rec, flavours, attachment := TransformPermit(samplePermit())

	assert.Equal(t, domain.KindPermit, rec.Schema)
	assert.Equal(t, domain.SourceSystemCore, rec.SourceSystem)
	assert.Equal(t, "permit-guid-1", rec.SourceExternalID)
	assert.Equal(t, "2020-05-01", rec.DateIssued.Format("2006-01-02"), "issue date comes from the OGP amendment")
	assert.Equal(t, AgencyName, rec.IssuingAgency)
	assert.Equal(t, "Mines Act", rec.Legislation.Act)
	assert.Equal(t, "10", rec.Legislation.Section)
	assert.Equal(t, "Permit M-2024-017 (Open)", rec.OutcomeDescription)
	assert.Equal(t, domain.EntityCompany, rec.IssuedTo.Type)

	require.NotNil(t, rec.Location.Centroid)
	assert.Equal(t, [2]float64{-121.03, 50.48}, *rec.Location.Centroid)

	require.Len(t, flavours, 2)

	require.NotNil(t, attachment)
	assert.Equal(t, "permit-guid-1", attachment.RecordID)
	assert.Equal(t, "doc-guid-1", attachment.AttachmentID)
}

func TestTransformPermitWithoutOriginalAmendment(t *testing.T) {
	permit := samplePermit()
	permit.Amendments = permit.Amendments[1:] // drop the OGP entry

	rec, _, attachment := TransformPermit(permit)
	assert.True(t, rec.DateIssued.IsZero())
	assert.Nil(t, attachment)
}

func TestTransformAmendment(t *testing.T) {
	permit := samplePermit()
	rec, flavours, attachment := TransformAmendment(permit, &permit.Amendments[1])

	assert.Equal(t, domain.KindPermitAmendment, rec.Schema)
	assert.Equal(t, "amendment-guid-1", rec.SourceExternalID, "amendments key on their own GUID")
	assert.Equal(t, "2024-02-10", rec.DateIssued.Format("2006-01-02"))
	assert.Equal(t, "Amendment to permit M-2024-017: Expanded tailings storage", rec.OutcomeDescription)

	require.Len(t, flavours, 2)
	assert.Equal(t, domain.AudiencePublicNotice, flavours[0].Audience())

	// First PDF wins; the docx is passed over.
	require.NotNil(t, attachment)
	assert.Equal(t, "doc-guid-3", attachment.AttachmentID)
	assert.Equal(t, "amendment.pdf", attachment.FileName)
}

func TestResolvePermittee(t *testing.T) {
	permit := samplePermit()
	permit.Permittee = Permittee{PartyTypeCode: "PER", FirstName: "Jane", LastName: "Doe"}

	entity := resolvePermittee(permit)
	assert.Equal(t, domain.EntityIndividual, entity.Type)
	assert.Equal(t, "Jane", entity.FirstName)

	// Unknown party codes are skipped, never defaulted.
	permit.Permittee = Permittee{PartyTypeCode: "GOV", PartyName: "Crown"}
	assert.Equal(t, domain.Entity{}, resolvePermittee(permit))
}

func TestQualifyingDocumentRequiresPDF(t *testing.T) {
	amendment := &Amendment{
		Documents: []Document{
			{DocumentGUID: "doc-1", FileName: "scan.tiff", MimeType: "image/tiff"},
		},
	}
	assert.Nil(t, qualifyingDocument("permit-guid", amendment))
	assert.Nil(t, qualifyingDocument("permit-guid", nil))
}
