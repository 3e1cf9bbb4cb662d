package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allMet() []*CriterionScore {
	names := append(append([]string{}, TierACriteria...), TierBCriteria...)
	scores := make([]*CriterionScore, 0, len(names))
	for _, name := range names {
		scores = append(scores, &CriterionScore{Criterion: name, Status: StatusMet, Evidence: "documented"})
	}
	return scores
}

func TestScoreAllMet(t *testing.T) {
	t.Parallel()

	readiness := NewScorer().Score(allMet(), 42_000, 6000)

	assert.Equal(t, 100, readiness.TierAScore)
	assert.Equal(t, 100, readiness.TierBScore)
	assert.Equal(t, ReadinessReady, readiness.Overall)
	assert.Equal(t, 7.0, readiness.WageToTuitionRatio)
	assert.Empty(t, readiness.Recommendations)
	assert.Len(t, readiness.Criteria, 8)
}

func TestScoreMissingCriteriaBecomeUncertain(t *testing.T) {
	t.Parallel()

	// Researcher only judged two criteria; the other six must be filled in
	// as uncertain rather than dropped.
	readiness := NewScorer().Score([]*CriterionScore{
		{Criterion: CriterionAccreditation, Status: StatusMet},
		{Criterion: CriterionCompletionRate, Status: StatusLikelyMet},
	}, 40_000, 5000)

	require.Len(t, readiness.Criteria, 8)

	uncertain := 0
	for _, c := range readiness.Criteria {
		if c.Status == StatusUncertain {
			uncertain++
		}
	}
	assert.Equal(t, 6, uncertain)

	// Tier A: met + 3x uncertain = (100+50+50+50)/4.
	assert.Equal(t, 62, readiness.TierAScore)
	// Tier B: likely-met + 3x uncertain = (75+50+50+50)/4.
	assert.Equal(t, 56, readiness.TierBScore)
	assert.Equal(t, ReadinessNeedsWork, readiness.Overall)
}

func TestScoreWageAbsentForcesEarningsUncertain(t *testing.T) {
	t.Parallel()

	readiness := NewScorer().Score(allMet(), 0, 6000)

	var earnings *CriterionScore
	for _, c := range readiness.Criteria {
		if c.Criterion == CriterionEarnings {
			earnings = c
		}
	}
	require.NotNil(t, earnings)
	assert.Equal(t, StatusUncertain, earnings.Status)
	assert.Equal(t, 0.0, readiness.WageToTuitionRatio)

	// Tier B loses the earnings points: (100+100+50+100)/4.
	assert.Equal(t, 87, readiness.TierBScore)
}

func TestScoreLeavesInputsUntouched(t *testing.T) {
	t.Parallel()

	scores := allMet()
	var earnings *CriterionScore
	for _, c := range scores {
		if c.Criterion == CriterionEarnings {
			earnings = c
		}
	}
	require.NotNil(t, earnings)

	// No wage data forces the earnings criterion to uncertain in the result,
	// but the researcher's record must keep its original status.
	NewScorer().Score(scores, 0, 0)

	assert.Equal(t, StatusMet, earnings.Status)
	assert.Equal(t, "documented", earnings.Evidence)
}

func TestScoreOverallThresholds(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()

	build := func(status CriterionStatus) []*CriterionScore {
		names := append(append([]string{}, TierACriteria...), TierBCriteria...)
		scores := make([]*CriterionScore, 0, len(names))
		for _, name := range names {
			scores = append(scores, &CriterionScore{Criterion: name, Status: status})
		}
		return scores
	}

	assert.Equal(t, ReadinessReady, scorer.Score(build(StatusMet), 40_000, 5000).Overall)
	assert.Equal(t, ReadinessLikely, scorer.Score(build(StatusLikelyMet), 40_000, 5000).Overall)
	assert.Equal(t, ReadinessNeedsWork, scorer.Score(build(StatusUncertain), 40_000, 5000).Overall)
	assert.Equal(t, ReadinessNotYet, scorer.Score(build(StatusNotMet), 40_000, 5000).Overall)
}

func TestScoreRecommendations(t *testing.T) {
	t.Parallel()

	scores := allMet()
	scores[0].Status = StatusNotMet
	scores[4].Status = StatusUncertain

	readiness := NewScorer().Score(scores, 40_000, 5000)

	require.Len(t, readiness.Recommendations, 2)
	assert.Contains(t, readiness.Recommendations[0], "remediate")
	assert.Contains(t, readiness.Recommendations[1], "gather documentation")
}

func TestScoreRatioRounded(t *testing.T) {
	t.Parallel()

	readiness := NewScorer().Score(allMet(), 41_111, 6000)
	assert.Equal(t, 6.85, readiness.WageToTuitionRatio)
}
