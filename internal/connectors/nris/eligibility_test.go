package nris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eligibleInspection() *Inspection {
	return &Inspection{
		AssessmentID:     1001,
		AssessmentStatus: "Complete",
		Inspection: InspectionDetail{
			InspectionType:    "Inspection",
			InspectionSubType: "Mine",
		},
	}
}

func TestIsEligibleAcceptsCompleteInspections(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, policy.IsEligible(eligibleInspection(), now))
}

func TestIsEligibleRejectsNonInspections(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	insp := eligibleInspection()
	insp.Inspection.InspectionType = "Audit"
	assert.False(t, policy.IsEligible(insp, now))
}

func TestIsEligibleRejectsDeniedSubTypes(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, subType := range []string{"Audit", "Forestry", "Oil and Gas"} {
		insp := eligibleInspection()
		insp.Inspection.InspectionSubType = subType
		assert.False(t, policy.IsEligible(insp, now), subType)
	}
}

func TestIsEligibleRejectsUnacceptedStatuses(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, status := range []string{"", "Open", "In Progress", "Draft"} {
		insp := eligibleInspection()
		insp.AssessmentStatus = status
		assert.False(t, policy.IsEligible(insp, now), status)
	}
}

func TestIsEligibleReportGracePeriodBoundary(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	insp := eligibleInspection()
	insp.AssessmentStatus = "Response Received"
	insp.AssessmentSubStatus = "Response Received"

	// Sent exactly 45 days ago: eligible.
	insp.Inspection.InspectionReportSentDate = now.Add(-45 * 24 * time.Hour).Format("2006-01-02")
	assert.True(t, policy.IsEligible(insp, now), "45 days")

	// Sent 44 days ago: still inside the grace period.
	insp.Inspection.InspectionReportSentDate = now.Add(-44 * 24 * time.Hour).Format("2006-01-02")
	assert.False(t, policy.IsEligible(insp, now), "44 days")

	// No parseable sent date: the period cannot have elapsed.
	insp.Inspection.InspectionReportSentDate = ""
	assert.False(t, policy.IsEligible(insp, now), "missing sent date")
}

func TestIsEligibleGracePeriodOnlyForResponseSubStatuses(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Status Complete with no sub-status: no grace period applies.
	insp := eligibleInspection()
	insp.Inspection.InspectionReportSentDate = now.Add(-24 * time.Hour).Format("2006-01-02")
	assert.True(t, policy.IsEligible(insp, now))
}
