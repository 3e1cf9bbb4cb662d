package opportunity

import (
	"encoding/json"
	"fmt"
	"os"

	"gapaudit/internal/mandate"
)

// GapOpportunity is derived for every requirement with no satisfying
// offering. Never created for a satisfied requirement and never mutated
// after creation.
type GapOpportunity struct {
	Requirement       *mandate.RequirementRecord `json:"requirement"`
	CohortSize        int                        `json:"cohort_size"`
	TuitionPerStudent int                        `json:"tuition_per_student"`
	AnnualRevenue     int                        `json:"annual_revenue"`
	Year2Revenue      int                        `json:"year2_revenue"`
	Confidence        Confidence                 `json:"confidence"`
	Rationale         string                     `json:"rationale"`
	OpportunityScore  int                        `json:"opportunity_score"`
	PriorityTier      Tier                       `json:"priority_tier"`
	KeyInsight        string                     `json:"key_insight"`
}

// Builder assembles GapOpportunities from unmatched requirements.
type Builder struct {
	model  *RevenueModel
	scorer *Scorer
}

func NewBuilder(model *RevenueModel, scorer *Scorer) *Builder {
	return &Builder{model: model, scorer: scorer}
}

// Build derives the full opportunity record for one unmatched requirement.
// marketPrice is zero when no verified figure exists; the formula applies.
// The revenue invariant holds exactly: AnnualRevenue is the plain product of
// cohort size, Year-1 cohorts and tuition, with no hidden rounding.
func (b *Builder) Build(req *mandate.RequirementRecord, marketPrice int) *GapOpportunity {
	cohortSize := b.model.CohortSize(req)
	plan := b.model.CohortsPerYear(req)
	tuition := b.model.TuitionPerStudent(req, marketPrice)
	confidence := b.model.EstimateConfidence(req, marketPrice > 0)

	annual := cohortSize * plan.Year1 * tuition
	year2 := cohortSize * plan.Year2 * tuition

	score := b.scorer.Score(req, annual)

	return &GapOpportunity{
		Requirement:       req,
		CohortSize:        cohortSize,
		TuitionPerStudent: tuition,
		AnnualRevenue:     annual,
		Year2Revenue:      year2,
		Confidence:        confidence,
		Rationale:         b.rationale(req, cohortSize, plan, tuition, marketPrice),
		OpportunityScore:  score,
		PriorityTier:      b.scorer.TierFor(score),
		KeyInsight:        b.keyInsight(req, annual),
	}
}

func (b *Builder) rationale(req *mandate.RequirementRecord, cohortSize int, plan CohortPlan, tuition, marketPrice int) string {
	kind := "classroom-based"
	if b.model.IsHandsOn(req) {
		kind = "hands-on"
	}

	pricing := fmt.Sprintf("tuition $%d from the %d clock-hour rate tier", tuition, req.ClockHours)
	if marketPrice > 0 {
		pricing = fmt.Sprintf("tuition $%d verified by market pricing", tuition)
	}

	return fmt.Sprintf(
		"%s program sized at %d students per cohort for %s demand; %d cohort(s) in year one, %d thereafter; %s",
		kind, cohortSize, req.DemandLevel, plan.Year1, plan.Year2, pricing,
	)
}

func (b *Builder) keyInsight(req *mandate.RequirementRecord, annual int) string {
	switch {
	case req.RenewalRequired:
		return fmt.Sprintf("%s carries a recurring renewal requirement, creating repeat enrollment beyond the initial cohort", req.Occupation)
	case req.DemandLevel == mandate.DemandHigh:
		return fmt.Sprintf("high regional demand for %s with no current offering; estimated $%d in first-year tuition", req.Occupation, annual)
	default:
		return fmt.Sprintf("no current offering covers the %s mandate (%s)", req.Occupation, req.RegulatoryBody)
	}
}

// Gaps is the ordered gap list for one run. Order follows the requirement
// research order so identical upstream data reproduces identical output.
type Gaps struct {
	Items []*GapOpportunity
}

func (g *Gaps) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Items)
}

// ByTier groups gaps for summary reporting.
func (g *Gaps) ByTier() map[Tier][]*GapOpportunity {
	grouped := make(map[Tier][]*GapOpportunity)
	for _, gap := range g.Items {
		grouped[gap.PriorityTier] = append(grouped[gap.PriorityTier], gap)
	}
	return grouped
}

// TotalAnnualRevenue sums the Year-1 planning estimates across all gaps.
func (g *Gaps) TotalAnnualRevenue() int {
	total := 0
	for _, gap := range g.Items {
		total += gap.AnnualRevenue
	}
	return total
}

func (g *Gaps) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "gaps_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return "", err
	}
	return file.Name(), nil
}
