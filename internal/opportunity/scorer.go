package opportunity

import "gapaudit/internal/mandate"

// Tier is the coarse priority verdict derived from the opportunity score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

const (
	scoreBaseline = 5
	scoreMin      = 1
	scoreMax      = 10

	highTierThreshold   = 7
	mediumTierThreshold = 5

	revenueStrongThreshold = 100_000
	revenueSolidThreshold  = 50_000
	revenueWeakThreshold   = 15_000

	sweetSpotMinHours = 40
	sweetSpotMaxHours = 600
)

// Scorer applies the composite opportunity rubric. A pure function of its
// inputs: no clocks, no randomness, no run-to-run drift.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score starts at the baseline and applies, in order: demand adjustment,
// revenue adjustment, recurring-renewal bonus, and the duration sweet-spot
// bonus for programs that are neither trivial nor unwieldy. Clamped to
// [1,10].
func (s *Scorer) Score(req *mandate.RequirementRecord, annualRevenue int) int {
	score := scoreBaseline

	switch req.DemandLevel {
	case mandate.DemandHigh:
		score += 3
	case mandate.DemandMedium:
		score++
	default:
		score--
	}

	switch {
	case annualRevenue >= revenueStrongThreshold:
		score += 2
	case annualRevenue >= revenueSolidThreshold:
		score++
	case annualRevenue < revenueWeakThreshold:
		score--
	}

	if req.RenewalRequired {
		score++
	}

	if req.ClockHours >= sweetSpotMinHours && req.ClockHours <= sweetSpotMaxHours {
		score++
	}

	if score < scoreMin {
		score = scoreMin
	}
	if score > scoreMax {
		score = scoreMax
	}
	return score
}

// TierFor maps a score onto the priority tier: >=7 high, >=5 medium,
// else low.
func (s *Scorer) TierFor(score int) Tier {
	switch {
	case score >= highTierThreshold:
		return TierHigh
	case score >= mediumTierThreshold:
		return TierMedium
	default:
		return TierLow
	}
}
