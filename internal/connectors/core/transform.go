package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/logger"
)

// AgencyName is the issuing agency for all CORE records.
const AgencyName = "Ministry of Energy, Mines and Low Carbon Innovation"

// Author is the importing system's author label on canonical records.
const Author = "BC Government"

// permitLegislation is the legislation reference for all mine permits.
var permitLegislation = domain.Legislation{Act: "Mines Act", Section: "10"}

// TransformPermit maps a permit into its canonical master record (kind
// Permit). Pure; no I/O.
func TransformPermit(permit *Permit) (*domain.Record, []domain.FlavourPayload, *domain.AttachmentDescriptor) {
	rec := &domain.Record{
		Schema:           domain.KindPermit,
		SourceSystem:     domain.SourceSystemCore,
		SourceExternalID: permit.PermitGUID,
		IssuingAgency:    AgencyName,
		Author:           Author,
		Legislation:      permitLegislation,
		IssuedTo:         resolvePermittee(permit),
		Location:         transformLocation(permit),
		OutcomeDescription: fmt.Sprintf("Permit %s (%s)", permit.PermitNo,
			permitStatusText(permit.PermitStatusCode)),
	}

	// The permit's issue date is the original issuance.
	var original *Amendment
	for i := range permit.Amendments {
		if permit.Amendments[i].TypeCode == "OGP" {
			original = &permit.Amendments[i]
			break
		}
	}
	if original != nil {
		rec.DateIssued = parseDate(original.IssueDate)
	}

	flavours := []domain.FlavourPayload{
		domain.NoticePayload{Summary: rec.OutcomeDescription},
		domain.SummaryPayload{Description: describePermit(permit)},
	}

	return rec, flavours, qualifyingDocument(permit.PermitGUID, original)
}

// TransformAmendment maps one non-original amendment into its own canonical
// record (kind PermitAmendment), keyed by the amendment GUID.
func TransformAmendment(permit *Permit, amendment *Amendment) (*domain.Record, []domain.FlavourPayload, *domain.AttachmentDescriptor) {
	rec := &domain.Record{
		Schema:             domain.KindPermitAmendment,
		SourceSystem:       domain.SourceSystemCore,
		SourceExternalID:   amendment.AmendmentGUID,
		DateIssued:         parseDate(amendment.IssueDate),
		IssuingAgency:      AgencyName,
		Author:             Author,
		Legislation:        permitLegislation,
		IssuedTo:           resolvePermittee(permit),
		Location:           transformLocation(permit),
		OutcomeDescription: fmt.Sprintf("Amendment to permit %s", permit.PermitNo),
	}
	if amendment.Description != "" {
		rec.OutcomeDescription += ": " + amendment.Description
	}

	flavours := []domain.FlavourPayload{
		domain.NoticePayload{Summary: rec.OutcomeDescription},
		domain.SummaryPayload{Description: fmt.Sprintf("%s under the %s, section %s.",
			rec.OutcomeDescription, permitLegislation.Act, permitLegislation.Section)},
	}

	return rec, flavours, qualifyingDocument(permit.PermitGUID, amendment)
}

// resolvePermittee maps the permit holder to the issued-to entity. Unknown
// party type codes are logged and skipped, never defaulted.
func resolvePermittee(permit *Permit) domain.Entity {
	p := permit.Permittee
	switch p.PartyTypeCode {
	case "ORG":
		return domain.Entity{Type: domain.EntityCompany, CompanyName: p.PartyName}
	case "PER":
		return domain.Entity{
			Type:       domain.EntityIndividual,
			FirstName:  p.FirstName,
			MiddleName: p.MiddleName,
			LastName:   p.LastName,
		}
	}
	logger.Warn("core: permit %s: %v %q, skipping permittee",
		permit.PermitNo, domain.ErrUnknownClientType, p.PartyTypeCode)
	return domain.Entity{}
}

// transformLocation derives the mine location; the centroid only when both
// coordinates are present and numeric.
func transformLocation(permit *Permit) domain.Location {
	out := domain.Location{Description: permit.MineName}

	if permit.Latitude == "" || permit.Longitude == "" {
		return out
	}
	lat, latErr := strconv.ParseFloat(permit.Latitude, 64)
	lon, lonErr := strconv.ParseFloat(permit.Longitude, 64)
	if latErr != nil || lonErr != nil {
		return out
	}

	out.Centroid = &[2]float64{lon, lat}
	return out
}

// parseDate parses an upstream date field; zero time when absent or
// malformed.
func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func permitStatusText(code string) string {
	switch code {
	case "O":
		return "Open"
	case "C":
		return "Closed"
	}
	return code
}

func describePermit(permit *Permit) string {
	return fmt.Sprintf("Permit %s issued to %s under the %s, section %s for %s.",
		permit.PermitNo, permit.Permittee.PartyName, permitLegislation.Act,
		permitLegislation.Section, permit.MineName)
}

// qualifyingDocument returns the descriptor for the amendment's permit
// package PDF, or nil when none qualifies.
func qualifyingDocument(permitGUID string, amendment *Amendment) *domain.AttachmentDescriptor {
	if amendment == nil {
		return nil
	}
	for i := range amendment.Documents {
		d := &amendment.Documents[i]
		if d.MimeType == "application/pdf" {
			return &domain.AttachmentDescriptor{
				RecordID:     permitGUID,
				AttachmentID: d.DocumentGUID,
				FileName:     d.FileName,
			}
		}
	}
	return nil
}
