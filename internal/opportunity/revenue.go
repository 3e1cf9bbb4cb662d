package opportunity

import (
	"strings"

	"gapaudit/internal/catalog"
	"gapaudit/internal/mandate"
)

// Confidence is the qualitative trust level attached to a revenue estimate.
// Estimates are planning figures; the flag travels with the report so
// consumers never mistake a formula output for a verified number.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Clock-hour bands used by both the cohort cadence and the tuition rate
// tiers. Short courses turn over quickly and command a higher hourly rate;
// long programs run few cohorts and price at a volume discount.
const (
	shortCourseMaxHours  = 80
	mediumCourseMaxHours = 300
)

const (
	shortCourseHourlyRate  = 18
	mediumCourseHourlyRate = 12
	longCourseHourlyRate   = 7

	tuitionRounding = 50
	tuitionFloor    = 250
	tuitionCap      = 8000
)

// CohortPlan is the ramp-aware cohort cadence for a new program.
type CohortPlan struct {
	Year1 int `json:"year1"`
	Year2 int `json:"year2"`
}

// RevenueModel produces cohort-size, cadence, and tuition heuristics.
// Pure: identical inputs always produce identical outputs.
type RevenueModel struct {
	handsOnKeywords []string
}

// ModelConfig carries the tunable keyword list that marks a program as
// hands-on (physical stations or clinical placements bound cohort size).
type ModelConfig struct {
	HandsOnKeywords []string `mapstructure:"hands-on-keywords"`
}

func defaultHandsOnKeywords() []string {
	return []string{
		"nurse", "nursing", "clinical", "medical", "dental", "phlebotomy",
		"massage", "cosmetology", "barber", "esthetician", "nail",
		"welding", "electrical", "electrician", "plumbing", "hvac",
		"automotive", "machining", "carpentry", "culinary", "lab",
	}
}

func NewRevenueModel(cfg ModelConfig) *RevenueModel {
	keywords := cfg.HandsOnKeywords
	if len(keywords) == 0 {
		keywords = defaultHandsOnKeywords()
	}
	return &RevenueModel{handsOnKeywords: keywords}
}

// IsHandsOn reports whether the occupation needs physical capacity
// (stations, clinical placements) that bounds cohort size regardless of
// demand.
func (m *RevenueModel) IsHandsOn(req *mandate.RequirementRecord) bool {
	folded := catalog.FoldForTokens(req.Occupation + " " + req.TrainingRequirement)
	for _, kw := range m.handsOnKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// CohortSize caps hands-on cohorts at 12/14/16 by demand tier; classroom
// programs scale with demand instead at 15/20/25.
func (m *RevenueModel) CohortSize(req *mandate.RequirementRecord) int {
	if m.IsHandsOn(req) {
		switch req.DemandLevel {
		case mandate.DemandHigh:
			return 16
		case mandate.DemandMedium:
			return 14
		default:
			return 12
		}
	}

	switch req.DemandLevel {
	case mandate.DemandHigh:
		return 25
	case mandate.DemandMedium:
		return 20
	default:
		return 15
	}
}

// CohortsPerYear buckets by required clock hours and picks a conservative
// Year-1 count with a larger Year-2+ count, reflecting a new-program ramp.
func (m *RevenueModel) CohortsPerYear(req *mandate.RequirementRecord) CohortPlan {
	switch {
	case req.ClockHours > 0 && req.ClockHours <= shortCourseMaxHours:
		switch req.DemandLevel {
		case mandate.DemandHigh:
			return CohortPlan{Year1: 4, Year2: 6}
		case mandate.DemandMedium:
			return CohortPlan{Year1: 3, Year2: 4}
		default:
			return CohortPlan{Year1: 2, Year2: 3}
		}
	case req.ClockHours > shortCourseMaxHours && req.ClockHours <= mediumCourseMaxHours:
		switch req.DemandLevel {
		case mandate.DemandHigh:
			return CohortPlan{Year1: 3, Year2: 4}
		case mandate.DemandMedium:
			return CohortPlan{Year1: 2, Year2: 3}
		default:
			return CohortPlan{Year1: 1, Year2: 2}
		}
	case req.ClockHours > mediumCourseMaxHours:
		if req.DemandLevel == mandate.DemandHigh {
			return CohortPlan{Year1: 2, Year2: 2}
		}
		return CohortPlan{Year1: 1, Year2: 2}
	default:
		// Unknown hours: assume one pilot cohort, two once established.
		return CohortPlan{Year1: 1, Year2: 2}
	}
}

// TuitionPerStudent multiplies the banded hourly rate by clock hours, rounds
// to the nearest $50, floors at $250 and caps at $8,000. A verified market
// price, when available, overrides the formula entirely.
func (m *RevenueModel) TuitionPerStudent(req *mandate.RequirementRecord, marketPrice int) int {
	if marketPrice > 0 {
		return marketPrice
	}
	if req.ClockHours <= 0 {
		return tuitionFloor
	}

	rate := longCourseHourlyRate
	switch {
	case req.ClockHours <= shortCourseMaxHours:
		rate = shortCourseHourlyRate
	case req.ClockHours <= mediumCourseMaxHours:
		rate = mediumCourseHourlyRate
	}

	tuition := req.ClockHours * rate
	tuition = ((tuition + tuitionRounding/2) / tuitionRounding) * tuitionRounding
	if tuition < tuitionFloor {
		tuition = tuitionFloor
	}
	if tuition > tuitionCap {
		tuition = tuitionCap
	}
	return tuition
}

// EstimateConfidence is medium only when demand is high and clock hours are
// known, or when an external market price verified the tuition figure.
// Everything else is low.
func (m *RevenueModel) EstimateConfidence(req *mandate.RequirementRecord, marketVerified bool) Confidence {
	if marketVerified {
		return ConfidenceMedium
	}
	if req.DemandLevel == mandate.DemandHigh && req.ClockHours > 0 {
		return ConfidenceMedium
	}
	return ConfidenceLow
}
