// Package pell assembles the funding-eligibility audit: discover the catalog
// with duration facts, bucket every offering by the hard duration thresholds,
// then research and score the readiness rubric for each candidate.
package pell

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gapaudit/internal/eligibility"
	"gapaudit/internal/pipeline"
	"gapaudit/internal/research"
)

// Stage names double as keys in RunResult.StageOutputs.
const (
	StageCatalog        = "catalog-collection"
	StageClassification = "duration-classification"
	StageCriteria       = "criteria-research"
	StageWages          = "wage-lookup"
	StageScoring        = "eligibility-scoring"
	StageNarrative      = "narrative-synthesis"
)

const (
	scratchCandidates = "candidates"
	scratchCriteria   = "criteria"
	scratchWages      = "wages"
)

// Assessment is the full eligibility picture for one candidate program.
type Assessment struct {
	Classified *eligibility.ClassifiedProgram    `json:"classified"`
	Readiness  *eligibility.EligibilityReadiness `json:"readiness"`
	MedianWage float64                           `json:"median_wage,omitempty"`
}

// Report is the structured outcome of one eligibility run.
type Report struct {
	RunID       string                          `json:"run_id"`
	Identity    research.Identity               `json:"identity"`
	Classified  *eligibility.ClassifiedPrograms `json:"classified"`
	Assessments []*Assessment                   `json:"assessments"`
	Narrative   string                          `json:"narrative,omitempty"`
	Degraded    bool                            `json:"degraded"`
}

// Deps are the collaborators and knobs one eligibility run needs. Criteria,
// Wages, Market and Narrative are optional; their stages degrade gracefully.
type Deps struct {
	Identity research.Identity

	Catalog   research.FactsCollector
	Criteria  research.CriteriaResearcher
	Wages     research.WageDataLookup
	Market    research.MarketPriceLookup
	Narrative research.NarrativeSynthesizer
	Throttle  *research.Throttle

	BatchLimit    int
	SkipNarrative bool

	Logger *zap.Logger
}

// Assembly wires the eligibility stages onto the orchestrator. Single-use:
// build one per run.
type Assembly struct {
	deps         Deps
	orchestrator *pipeline.Orchestrator
	scorer       *eligibility.Scorer
	report       *Report
}

// New validates the run identity and builds the stage chain.
func New(deps Deps) (*Assembly, error) {
	if deps.Identity.Institution == "" {
		return nil, &pipeline.ConfigurationError{Field: "institution", Message: "institution name is required"}
	}
	if deps.Catalog == nil {
		return nil, &pipeline.ConfigurationError{Message: "catalog collector is required"}
	}
	if deps.Throttle == nil {
		deps.Throttle = research.NewThrottle(-1, 0)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	a := &Assembly{
		deps:   deps,
		scorer: eligibility.NewScorer(),
		report: &Report{Identity: deps.Identity},
	}

	a.orchestrator = pipeline.New([]pipeline.Stage{
		{Name: StageCatalog, Fatal: true, Run: a.collectCatalog},
		{Name: StageClassification, Fatal: true, Run: a.classify},
		{Name: StageCriteria, Run: a.researchCriteria},
		{Name: StageWages, Run: a.lookupWages},
		{Name: StageScoring, Fatal: true, Run: a.score},
		{Name: StageNarrative, Run: a.synthesizeNarrative},
	}, deps.Logger)

	return a, nil
}

// Subscribe attaches a progress observer. Must be called before Run.
func (a *Assembly) Subscribe(s pipeline.Subscriber) {
	a.orchestrator.Subscribe(s)
}

// Run executes the eligibility audit. The report is nil when the run aborted
// on a fatal stage.
func (a *Assembly) Run(ctx context.Context) (*Report, *pipeline.RunResult) {
	result := a.orchestrator.Run(ctx)
	a.report.RunID = result.RunID
	a.report.Degraded = result.Degraded
	if result.Status == pipeline.StatusError {
		return nil, result
	}
	return a.report, result
}

// collectCatalog is fatal here: the catalog is the subject of this audit, so
// there is no degraded continuation without it.
func (a *Assembly) collectCatalog(ctx context.Context, st *pipeline.State) error {
	facts, err := a.deps.Catalog.CollectFacts(ctx, a.deps.Identity)
	if err != nil {
		return &pipeline.CollectionError{
			Source:  "catalog",
			Message: "catalog discovery failed",
			Err:     err,
		}
	}
	if len(facts) == 0 {
		return &pipeline.CollectionError{
			Source:  "catalog",
			Message: fmt.Sprintf("no offerings found for %s; nothing to classify", a.deps.Identity.Institution),
		}
	}

	st.Outputs[StageCatalog] = facts
	st.Result.StageOutputs[StageCatalog] = len(facts)
	st.Result.Stats["programs_discovered"] = len(facts)
	return nil
}

func (a *Assembly) classify(_ context.Context, st *pipeline.State) error {
	facts := st.Outputs[StageCatalog].([]eligibility.ProgramFacts)

	classified := &eligibility.ClassifiedPrograms{}
	var candidates []*eligibility.ClassifiedProgram
	for _, f := range facts {
		c := eligibility.Classify(f)
		classified.Items = append(classified.Items, c)
		switch c.PellCategory {
		case eligibility.CategoryCandidate, eligibility.CategoryAlreadyEligible:
			candidates = append(candidates, c)
		}
	}

	a.report.Classified = classified
	st.Outputs[scratchCandidates] = candidates
	st.Result.StageOutputs[StageClassification] = classified
	for category, group := range classified.ByCategory() {
		st.Result.Stats["category_"+string(category)] = len(group)
	}
	return nil
}

// researchCriteria is non-fatal: programs the researcher never judged score
// every criterion as uncertain.
func (a *Assembly) researchCriteria(ctx context.Context, st *pipeline.State) error {
	candidates := st.Outputs[scratchCandidates].([]*eligibility.ClassifiedProgram)
	criteria := make(map[string][]*eligibility.CriterionScore)
	st.Outputs[scratchCriteria] = criteria

	if a.deps.Criteria == nil || len(candidates) == 0 {
		return nil
	}

	for _, c := range candidates {
		scores, err := a.deps.Criteria.Criteria(ctx, a.deps.Identity, c.Program.Name)
		if err != nil {
			return &pipeline.CollectionError{
				Source:  "criteria research",
				Message: "criterion research failed; unjudged criteria score as uncertain",
				Err:     err,
			}
		}
		criteria[c.Program.NormalizedName] = scores
	}
	return nil
}

// lookupWages is non-fatal: a missing wage forces the earnings criterion to
// uncertain downstream instead of failing the run.
func (a *Assembly) lookupWages(ctx context.Context, st *pipeline.State) error {
	candidates := st.Outputs[scratchCandidates].([]*eligibility.ClassifiedProgram)
	wages := make(map[string]float64)
	st.Outputs[scratchWages] = wages

	if a.deps.Wages == nil || len(candidates) == 0 {
		return nil
	}

	for _, c := range candidates {
		if c.OccupationCode == "" {
			continue
		}
		wage, ok, err := a.deps.Wages.MedianWage(ctx, c.OccupationCode)
		if err != nil {
			return &pipeline.CollectionError{
				Source:  "wage lookup",
				Message: "wage lookup failed; earnings criteria score as uncertain",
				Err:     err,
			}
		}
		if ok {
			wages[c.Program.NormalizedName] = wage
		}
	}
	st.Result.Stats["wages_resolved"] = len(wages)
	return nil
}

func (a *Assembly) score(ctx context.Context, st *pipeline.State) error {
	candidates := st.Outputs[scratchCandidates].([]*eligibility.ClassifiedProgram)
	criteria := st.Outputs[scratchCriteria].(map[string][]*eligibility.CriterionScore)
	wages := st.Outputs[scratchWages].(map[string]float64)

	for _, c := range candidates {
		wage := wages[c.Program.NormalizedName]

		tuition := 0
		if a.deps.Market != nil {
			price, ok, err := a.deps.Market.Price(ctx, c.Program.Name, a.deps.Identity.Location)
			switch {
			case err != nil:
				a.deps.Logger.Warn("market price lookup failed; wage-to-tuition ratio omitted",
					zap.String("program", c.Program.Name),
					zap.Error(err),
				)
			case ok:
				tuition = price
			}
		}

		readiness := a.scorer.Score(criteria[c.Program.NormalizedName], wage, tuition)
		a.report.Assessments = append(a.report.Assessments, &Assessment{
			Classified: c,
			Readiness:  readiness,
			MedianWage: wage,
		})
	}

	st.Result.StageOutputs[StageScoring] = a.report.Assessments
	st.Result.Stats["programs_assessed"] = len(a.report.Assessments)
	return nil
}

func (a *Assembly) synthesizeNarrative(ctx context.Context, st *pipeline.State) error {
	if a.deps.SkipNarrative || a.deps.Narrative == nil {
		return nil
	}

	narrative, err := a.deps.Narrative.Synthesize(ctx, a.report)
	if err != nil {
		return &pipeline.CollectionError{
			Source:  "narrative",
			Message: "narrative synthesis failed; structured report stands alone",
			Err:     err,
		}
	}
	a.report.Narrative = narrative
	st.Result.StageOutputs[StageNarrative] = narrative
	return nil
}
