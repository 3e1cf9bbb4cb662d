package eligibility

import (
	"fmt"
	"math"
)

// Readiness is the overall eligibility verdict.
type Readiness string

const (
	ReadinessReady     Readiness = "ready"
	ReadinessLikely    Readiness = "likely-ready"
	ReadinessNeedsWork Readiness = "needs-work"
	ReadinessNotYet    Readiness = "not-eligible"
)

// Overall readiness thresholds applied to the two tier scores.
const (
	readyThreshold     = 85
	likelyThreshold    = 65
	needsWorkThreshold = 40
)

// EligibilityReadiness is derived strictly from the eight criterion scores
// plus external wage data. Immutable once built.
type EligibilityReadiness struct {
	TierAScore         int               `json:"tier_a_score"`
	TierBScore         int               `json:"tier_b_score"`
	Overall            Readiness         `json:"overall"`
	WageToTuitionRatio float64           `json:"wage_to_tuition_ratio,omitempty"`
	Criteria           []*CriterionScore `json:"criteria"`
	Recommendations    []string          `json:"recommendations"`
}

// Scorer aggregates the researcher-supplied criterion statuses.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score aggregates the two tiers, derives the overall readiness, and
// computes the wage-to-tuition ratio. medianWage is the annual median wage
// for the program's occupation; zero means no wage data was available, in
// which case the earnings criterion is forced to "uncertain" rather than
// defaulting to a pass.
func (s *Scorer) Score(criteria []*CriterionScore, medianWage float64, tuition int) *EligibilityReadiness {
	byName := make(map[string]*CriterionScore, len(criteria))
	for _, c := range criteria {
		byName[c.Criterion] = c
	}

	// Every rubric slot must be present. A criterion the researcher never
	// reported on is uncertain, not missing. Supplied records are copied so
	// the wage override below never mutates the researcher's input.
	filled := make([]*CriterionScore, 0, len(TierACriteria)+len(TierBCriteria))
	for _, name := range append(append([]string{}, TierACriteria...), TierBCriteria...) {
		c, ok := byName[name]
		if ok {
			copied := *c
			c = &copied
		} else {
			c = &CriterionScore{
				Criterion: name,
				Status:    StatusUncertain,
				Evidence:  "no evidence supplied by research",
			}
		}
		byName[name] = c
		filled = append(filled, c)
	}

	ratio := 0.0
	if medianWage <= 0 {
		earnings := byName[CriterionEarnings]
		earnings.Status = StatusUncertain
		earnings.Evidence = "wage data unavailable for occupation"
	} else if tuition > 0 {
		ratio = math.Round(medianWage/float64(tuition)*100) / 100
	}

	tierA := tierScore(byName, TierACriteria)
	tierB := tierScore(byName, TierBCriteria)

	return &EligibilityReadiness{
		TierAScore:         tierA,
		TierBScore:         tierB,
		Overall:            overall(tierA, tierB),
		WageToTuitionRatio: ratio,
		Criteria:           filled,
		Recommendations:    recommendations(byName),
	}
}

func tierScore(byName map[string]*CriterionScore, names []string) int {
	total := 0
	for _, name := range names {
		total += statusPoints(byName[name].Status)
	}
	return total / len(names)
}

func overall(tierA, tierB int) Readiness {
	switch {
	case tierA >= readyThreshold && tierB >= readyThreshold:
		return ReadinessReady
	case tierA >= likelyThreshold && tierB >= likelyThreshold:
		return ReadinessLikely
	case tierA >= needsWorkThreshold || tierB >= needsWorkThreshold:
		return ReadinessNeedsWork
	default:
		return ReadinessNotYet
	}
}

func recommendations(byName map[string]*CriterionScore) []string {
	recs := []string{}
	for _, name := range append(append([]string{}, TierACriteria...), TierBCriteria...) {
		c := byName[name]
		switch c.Status {
		case StatusMet, StatusLikelyMet:
			continue
		case StatusUncertain:
			recs = append(recs, fmt.Sprintf("gather documentation for %s; current evidence is inconclusive", c.Criterion))
		default:
			recs = append(recs, fmt.Sprintf("remediate %s before applying; currently %s", c.Criterion, c.Status))
		}
	}
	return recs
}
