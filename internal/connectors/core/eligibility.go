package core

import "time"

// MinIssueAge is the CORE staleness threshold: amendments issued less than a
// week ago are held back until the next run. Deliberately different from the
// NRIS grace period; the thresholds are per-agency policy and stay separate.
const MinIssueAge = 7 * 24 * time.Hour

// Policy encodes the CORE eligibility rules.
type Policy struct {
	// AllowedPermitTypes are the permit type codes ready for import.
	AllowedPermitTypes []string

	// MinIssueAge is the staleness threshold applied to amendment issue
	// dates.
	MinIssueAge time.Duration
}

// DefaultPolicy returns the production CORE eligibility rules.
func DefaultPolicy() Policy {
	return Policy{
		// M: mineral, C: coal, P: placer, G: sand and gravel.
		AllowedPermitTypes: []string{"M", "C", "P", "G"},
		MinIssueAge:        MinIssueAge,
	}
}

// PermitEligible decides whether a permit's type admits it at all.
func (p Policy) PermitEligible(permit *Permit) bool {
	for _, t := range p.AllowedPermitTypes {
		if permit.PermitTypeCode == t {
			return true
		}
	}
	return false
}

// AmendmentEligible decides whether one amendment is ready to import at time
// now: it must carry a parseable issue date at least MinIssueAge old.
func (p Policy) AmendmentEligible(a *Amendment, now time.Time) bool {
	issued, err := time.Parse(dateLayout, a.IssueDate)
	if err != nil {
		return false
	}
	return now.Sub(issued) >= p.MinIssueAge
}
