package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gapaudit/internal/mandate"
)

func TestIsHandsOn(t *testing.T) {
	t.Parallel()

	model := NewRevenueModel(ModelConfig{})

	assert.True(t, model.IsHandsOn(&mandate.RequirementRecord{Occupation: "Barber"}))
	assert.True(t, model.IsHandsOn(&mandate.RequirementRecord{
		Occupation:          "Security Guard",
		TrainingRequirement: "8 hours of clinical observation",
	}))
	assert.False(t, model.IsHandsOn(&mandate.RequirementRecord{Occupation: "Notary Public"}))
}

func TestIsHandsOnCustomKeywords(t *testing.T) {
	t.Parallel()

	model := NewRevenueModel(ModelConfig{HandsOnKeywords: []string{"forklift"}})

	assert.True(t, model.IsHandsOn(&mandate.RequirementRecord{Occupation: "Forklift Operator"}))
	assert.False(t, model.IsHandsOn(&mandate.RequirementRecord{Occupation: "Barber"}))
}

func TestCohortSize(t *testing.T) {
	t.Parallel()

	model := NewRevenueModel(ModelConfig{})

	tests := []struct {
		name   string
		req    *mandate.RequirementRecord
		expect int
	}{
		{"hands-on high", &mandate.RequirementRecord{Occupation: "Barber", DemandLevel: mandate.DemandHigh}, 16},
		{"hands-on medium", &mandate.RequirementRecord{Occupation: "Barber", DemandLevel: mandate.DemandMedium}, 14},
		{"hands-on low", &mandate.RequirementRecord{Occupation: "Barber", DemandLevel: mandate.DemandLow}, 12},
		{"classroom high", &mandate.RequirementRecord{Occupation: "Notary Public", DemandLevel: mandate.DemandHigh}, 25},
		{"classroom medium", &mandate.RequirementRecord{Occupation: "Notary Public", DemandLevel: mandate.DemandMedium}, 20},
		{"classroom low", &mandate.RequirementRecord{Occupation: "Notary Public", DemandLevel: mandate.DemandLow}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, model.CohortSize(tt.req))
		})
	}
}

func TestCohortsPerYear(t *testing.T) {
	t.Parallel()

	model := NewRevenueModel(ModelConfig{})

	tests := []struct {
		name   string
		hours  int
		demand mandate.DemandLevel
		expect CohortPlan
	}{
		{"short high", 40, mandate.DemandHigh, CohortPlan{Year1: 4, Year2: 6}},
		{"short medium", 80, mandate.DemandMedium, CohortPlan{Year1: 3, Year2: 4}},
		{"short low", 80, mandate.DemandLow, CohortPlan{Year1: 2, Year2: 3}},
		{"medium high", 300, mandate.DemandHigh, CohortPlan{Year1: 3, Year2: 4}},
		{"medium medium", 150, mandate.DemandMedium, CohortPlan{Year1: 2, Year2: 3}},
		{"medium low", 150, mandate.DemandLow, CohortPlan{Year1: 1, Year2: 2}},
		{"long high", 1450, mandate.DemandHigh, CohortPlan{Year1: 2, Year2: 2}},
		{"long low", 1450, mandate.DemandLow, CohortPlan{Year1: 1, Year2: 2}},
		{"unknown hours", 0, mandate.DemandHigh, CohortPlan{Year1: 1, Year2: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			plan := model.CohortsPerYear(&mandate.RequirementRecord{
				ClockHours:  tt.hours,
				DemandLevel: tt.demand,
			})
			assert.Equal(t, tt.expect, plan)
		})
	}
}

func TestTuitionPerStudent(t *testing.T) {
	t.Parallel()

	model := NewRevenueModel(ModelConfig{})

	tests := []struct {
		name        string
		hours       int
		marketPrice int
		expect      int
	}{
		{"short course at $18/h", 40, 0, 700},
		{"medium course at $12/h", 120, 0, 1450},
		{"long course at $7/h", 400, 0, 2800},
		{"rounds to nearest 50", 81, 0, 950},
		{"floor applies", 10, 0, 250},
		{"cap applies", 1450, 0, 8000},
		{"unknown hours gets floor", 0, 0, 250},
		{"market price overrides", 1450, 6200, 6200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := model.TuitionPerStudent(&mandate.RequirementRecord{ClockHours: tt.hours}, tt.marketPrice)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestEstimateConfidence(t *testing.T) {
	t.Parallel()

	model := NewRevenueModel(ModelConfig{})

	assert.Equal(t, ConfidenceMedium, model.EstimateConfidence(&mandate.RequirementRecord{
		DemandLevel: mandate.DemandLow,
	}, true))
	assert.Equal(t, ConfidenceMedium, model.EstimateConfidence(&mandate.RequirementRecord{
		DemandLevel: mandate.DemandHigh,
		ClockHours:  100,
	}, false))
	assert.Equal(t, ConfidenceLow, model.EstimateConfidence(&mandate.RequirementRecord{
		DemandLevel: mandate.DemandHigh,
	}, false))
	assert.Equal(t, ConfidenceLow, model.EstimateConfidence(&mandate.RequirementRecord{
		DemandLevel: mandate.DemandLow,
		ClockHours:  100,
	}, false))
}
