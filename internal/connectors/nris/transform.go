package nris

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/logger"
)

// Agency display names. The legacy environmental protection office was folded
// into the current ministry; records still arriving under the old name are
// normalized to the current one.
const (
	AgencyName       = "Ministry of Environment and Climate Change Strategy"
	legacyAgencyName = "Ministry of Environment"
)

// Author is the importing system's author label on canonical records.
const Author = "BC Government"

// legislationBySource maps the upstream requirement source to the act and
// section the inspection was carried out under.
var legislationBySource = map[string]domain.Legislation{
	"Environmental Management Act":   {Act: "Environmental Management Act", Section: "109"},
	"Integrated Pest Management Act": {Act: "Integrated Pest Management Act", Section: "17"},
	"Greenhouse Gas Industrial Reporting and Control Act": {
		Act: "Greenhouse Gas Industrial Reporting and Control Act", Section: "22",
	},
}

// defaultLegislation is the fallback for unmapped requirement sources.
var defaultLegislation = domain.Legislation{Act: "Environmental Management Act", Section: "109"}

// finalReportType is the only attachment type staged by the pipeline.
const finalReportType = "Final Report"

// Transform maps an eligible inspection into its canonical record, audience
// payloads and qualifying attachment descriptor. Pure: no I/O, deterministic
// for a given input.
func Transform(insp *Inspection) (*domain.Record, []domain.FlavourPayload, *domain.AttachmentDescriptor) {
	externalID := strconv.FormatInt(insp.AssessmentID, 10)

	rec := &domain.Record{
		Schema:             domain.KindInspection,
		SourceSystem:       domain.SourceSystemNRIS,
		SourceExternalID:   externalID,
		DateIssued:         parseDate(insp.AssessmentDate),
		IssuingAgency:      normalizeAgency(insp.Agency),
		Author:             Author,
		Legislation:        legislationFor(insp.RequirementSource),
		IssuedTo:           resolveEntity(insp.Client, externalID),
		Location:           transformLocation(insp.Location),
		OutcomeDescription: outcomeDescription(insp),
	}

	flavours := []domain.FlavourPayload{
		domain.NoticePayload{Summary: rec.OutcomeDescription},
		domain.SummaryPayload{Description: describeInspection(insp)},
	}

	return rec, flavours, qualifyingAttachment(insp, externalID)
}

// normalizeAgency collapses the legacy office name into the current agency
// display name. Unknown office names pass through unchanged.
func normalizeAgency(agency string) string {
	switch agency {
	case "", legacyAgencyName, "Environmental Protection Division":
		return AgencyName
	}
	return agency
}

// legislationFor derives the legislation reference from the requirement
// source, falling back to the default act and section when unmapped.
func legislationFor(source string) domain.Legislation {
	if leg, ok := legislationBySource[source]; ok {
		return leg
	}
	return defaultLegislation
}

// resolveEntity picks the issued-to entity from the inspection's client
// records. Corporations win over individuals when both are present; unmapped
// client type codes are logged and skipped, never defaulted.
func resolveEntity(clients []Client, externalID string) domain.Entity {
	var individual *domain.Entity

	for i := range clients {
		c := &clients[i]
		switch c.ClientType {
		case "C", "O":
			return domain.Entity{Type: domain.EntityCompany, CompanyName: c.OrgName}
		case "I":
			if individual == nil {
				individual = &domain.Entity{
					Type:       domain.EntityIndividual,
					FirstName:  c.FirstName,
					MiddleName: c.MiddleName,
					LastName:   c.LastName,
				}
			}
		default:
			logger.Warn("nris: assessment %s: %v %q, skipping client", externalID, domain.ErrUnknownClientType, c.ClientType)
		}
	}

	if individual != nil {
		return *individual
	}
	return domain.Entity{}
}

// transformLocation maps the inspected site; the centroid is derived only
// when both coordinates are present and numeric.
func transformLocation(loc Location) domain.Location {
	out := domain.Location{Description: loc.Description}

	if loc.Latitude == "" || loc.Longitude == "" {
		return out
	}
	lat, latErr := strconv.ParseFloat(loc.Latitude, 64)
	lon, lonErr := strconv.ParseFloat(loc.Longitude, 64)
	if latErr != nil || lonErr != nil {
		return out
	}

	out.Centroid = &[2]float64{lon, lat}
	return out
}

// outcomeDescription synthesizes the human-readable outcome from the raw
// status fields.
func outcomeDescription(insp *Inspection) string {
	desc := "Inspection Status: " + insp.AssessmentStatus
	if insp.AssessmentSubStatus != "" {
		desc += " (" + insp.AssessmentSubStatus + ")"
	}
	if insp.FindingsDescription != "" {
		desc += "; " + insp.FindingsDescription
	}
	return desc
}

// describeInspection builds the longer summary-audience description.
func describeInspection(insp *Inspection) string {
	leg := legislationFor(insp.RequirementSource)
	return fmt.Sprintf("Inspection carried out under the %s, section %s. %s",
		leg.Act, leg.Section, outcomeDescription(insp))
}

// qualifyingAttachment returns the descriptor for the inspection's final
// report, or nil when none qualifies. Only PDF final reports are staged.
func qualifyingAttachment(insp *Inspection, externalID string) *domain.AttachmentDescriptor {
	for i := range insp.Attachments {
		a := &insp.Attachments[i]
		if a.AttachmentType == finalReportType && a.FileType == "application/pdf" {
			return &domain.AttachmentDescriptor{
				RecordID:     externalID,
				AttachmentID: strconv.FormatInt(a.AttachmentID, 10),
				FileName:     a.FileName,
			}
		}
	}
	return nil
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
