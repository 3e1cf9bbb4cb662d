package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gapaudit/internal/mandate"
)

func TestScore(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()

	tests := []struct {
		name    string
		req     *mandate.RequirementRecord
		revenue int
		expect  int
	}{
		{
			name: "everything favorable hits the cap",
			req: &mandate.RequirementRecord{
				DemandLevel:     mandate.DemandHigh,
				RenewalRequired: true,
				ClockHours:      120,
			},
			revenue: 150_000,
			expect:  10, // 5+3+2+1+1 = 12 clamped
		},
		{
			name: "everything unfavorable hits the floor",
			req: &mandate.RequirementRecord{
				DemandLevel: mandate.DemandLow,
				ClockHours:  10,
			},
			revenue: 5_000,
			expect:  3,
		},
		{
			name: "medium demand solid revenue",
			req: &mandate.RequirementRecord{
				DemandLevel: mandate.DemandMedium,
				ClockHours:  200,
			},
			revenue: 60_000,
			expect:  8, // 5+1+1+1
		},
		{
			name: "low demand long program",
			req: &mandate.RequirementRecord{
				DemandLevel: mandate.DemandLow,
				ClockHours:  1450,
			},
			revenue: 96_000,
			expect:  5, // 5-1+1
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, scorer.Score(tt.req, tt.revenue))
		})
	}
}

func TestScoreClamped(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()

	for revenue := 0; revenue <= 200_000; revenue += 10_000 {
		for _, demand := range []mandate.DemandLevel{mandate.DemandHigh, mandate.DemandMedium, mandate.DemandLow} {
			score := scorer.Score(&mandate.RequirementRecord{
				DemandLevel:     demand,
				RenewalRequired: true,
				ClockHours:      100,
			}, revenue)
			assert.GreaterOrEqual(t, score, 1)
			assert.LessOrEqual(t, score, 10)
		}
	}
}

func TestTierFor(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()

	assert.Equal(t, TierHigh, scorer.TierFor(10))
	assert.Equal(t, TierHigh, scorer.TierFor(7))
	assert.Equal(t, TierMedium, scorer.TierFor(6))
	assert.Equal(t, TierMedium, scorer.TierFor(5))
	assert.Equal(t, TierLow, scorer.TierFor(4))
	assert.Equal(t, TierLow, scorer.TierFor(1))
}
