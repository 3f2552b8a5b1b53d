package nris

import "time"

// MinReportAge is the response grace period: inspections whose report went
// out less than this long ago are held back so the client can respond or
// appeal before the record publishes.
const MinReportAge = 45 * 24 * time.Hour

// Policy encodes the NRIS eligibility rules. It is deliberately its own
// struct, separate from the permit source's policy; the thresholds and
// allow-lists differ per agency and must stay independently configurable.
type Policy struct {
	// AcceptedStatuses are the assessment statuses ready for import.
	AcceptedStatuses []string

	// ResponseSubStatuses are sub-statuses that additionally require the
	// report-sent grace period to have elapsed.
	ResponseSubStatuses []string

	// MinReportAge is the grace period applied to ResponseSubStatuses.
	MinReportAge time.Duration

	// DeniedSubTypes excludes whole record sub-types (audits, non-mine
	// sectors) from import.
	DeniedSubTypes []string
}

// DefaultPolicy returns the production NRIS eligibility rules.
func DefaultPolicy() Policy {
	return Policy{
		AcceptedStatuses:    []string{"Complete", "Response Received", "Closed"},
		ResponseSubStatuses: []string{"Response Received", "Closed"},
		MinReportAge:        MinReportAge,
		DeniedSubTypes:      []string{"Audit", "Forestry", "Oil and Gas"},
	}
}

// IsEligible decides whether an inspection is ready to import at time now.
// Ineligible records are dropped silently: they are neither counted nor
// treated as errors.
func (p Policy) IsEligible(insp *Inspection, now time.Time) bool {
	if insp.Inspection.InspectionType != "Inspection" {
		return false
	}
	for _, denied := range p.DeniedSubTypes {
		if insp.Inspection.InspectionSubType == denied {
			return false
		}
	}

	accepted := false
	for _, s := range p.AcceptedStatuses {
		if insp.AssessmentStatus == s {
			accepted = true
			break
		}
	}
	if !accepted {
		return false
	}

	for _, sub := range p.ResponseSubStatuses {
		if insp.AssessmentSubStatus != sub {
			continue
		}
		sent, err := time.Parse(dateLayout, insp.Inspection.InspectionReportSentDate)
		if err != nil {
			// No parseable sent date means the grace period cannot
			// have elapsed.
			return false
		}
		return now.Sub(sent) >= p.MinReportAge
	}

	return true
}
