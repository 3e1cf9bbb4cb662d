package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapaudit/internal/mandate"
)

func newBuilder() *Builder {
	return NewBuilder(NewRevenueModel(ModelConfig{}), NewScorer())
}

func TestBuildBarberScenario(t *testing.T) {
	t.Parallel()

	// A 1450 clock-hour hands-on mandate with low demand and no verified
	// market price.
	req := &mandate.RequirementRecord{
		Occupation:          "Barber",
		RegulatoryBody:      "State Board of Barbering",
		ClockHours:          1450,
		DemandLevel:         mandate.DemandLow,
		TrainingRequirement: "1450 hours of barber school",
	}

	gap := newBuilder().Build(req, 0)

	assert.Equal(t, 12, gap.CohortSize)
	assert.Equal(t, 8000, gap.TuitionPerStudent)
	assert.Equal(t, 96_000, gap.AnnualRevenue)
	assert.Equal(t, 192_000, gap.Year2Revenue)
	assert.Equal(t, ConfidenceLow, gap.Confidence)
	assert.Equal(t, 5, gap.OpportunityScore)
	assert.Equal(t, TierMedium, gap.PriorityTier)
	assert.Contains(t, gap.Rationale, "hands-on")
}

func TestBuildRevenueInvariant(t *testing.T) {
	t.Parallel()

	builder := newBuilder()
	model := NewRevenueModel(ModelConfig{})

	reqs := []*mandate.RequirementRecord{
		{Occupation: "Barber", ClockHours: 1450, DemandLevel: mandate.DemandLow},
		{Occupation: "Notary Public", ClockHours: 6, DemandLevel: mandate.DemandMedium},
		{Occupation: "Security Guard", ClockHours: 40, DemandLevel: mandate.DemandHigh, RenewalRequired: true},
		{Occupation: "HVAC Technician", ClockHours: 250, DemandLevel: mandate.DemandHigh},
		{Occupation: "Home Inspector", DemandLevel: mandate.DemandLow},
	}

	for _, req := range reqs {
		for _, marketPrice := range []int{0, 3500} {
			gap := builder.Build(req, marketPrice)
			plan := model.CohortsPerYear(req)

			require.Equal(t, gap.CohortSize*plan.Year1*gap.TuitionPerStudent, gap.AnnualRevenue,
				"annual revenue must be the exact product for %s", req.Occupation)
			require.Equal(t, gap.CohortSize*plan.Year2*gap.TuitionPerStudent, gap.Year2Revenue,
				"year-2 revenue must be the exact product for %s", req.Occupation)
		}
	}
}

func TestBuildMarketPriceOverride(t *testing.T) {
	t.Parallel()

	req := &mandate.RequirementRecord{
		Occupation:  "Barber",
		ClockHours:  1450,
		DemandLevel: mandate.DemandLow,
	}

	gap := newBuilder().Build(req, 6200)

	assert.Equal(t, 6200, gap.TuitionPerStudent)
	assert.Equal(t, ConfidenceMedium, gap.Confidence)
	assert.Contains(t, gap.Rationale, "verified by market pricing")
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	req := &mandate.RequirementRecord{
		Occupation:      "Security Guard",
		ClockHours:      40,
		DemandLevel:     mandate.DemandHigh,
		RenewalRequired: true,
	}

	builder := newBuilder()
	first := builder.Build(req, 0)
	second := builder.Build(req, 0)

	assert.Equal(t, first, second)
}

func TestKeyInsightPrefersRenewal(t *testing.T) {
	t.Parallel()

	gap := newBuilder().Build(&mandate.RequirementRecord{
		Occupation:      "Security Guard",
		ClockHours:      40,
		DemandLevel:     mandate.DemandHigh,
		RenewalRequired: true,
	}, 0)

	assert.Contains(t, gap.KeyInsight, "renewal")
}

func TestGapsAggregation(t *testing.T) {
	t.Parallel()

	builder := newBuilder()
	gaps := &Gaps{Items: []*GapOpportunity{
		builder.Build(&mandate.RequirementRecord{Occupation: "Barber", ClockHours: 1450, DemandLevel: mandate.DemandLow}, 0),
		builder.Build(&mandate.RequirementRecord{Occupation: "Security Guard", ClockHours: 40, DemandLevel: mandate.DemandHigh, RenewalRequired: true}, 0),
	}}

	total := 0
	for _, gap := range gaps.Items {
		total += gap.AnnualRevenue
	}
	assert.Equal(t, total, gaps.TotalAnnualRevenue())

	grouped := gaps.ByTier()
	count := 0
	for _, group := range grouped {
		count += len(group)
	}
	assert.Equal(t, gaps.Len(), count)
}
