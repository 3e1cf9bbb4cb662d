// Package audit assembles the licensing gap audit: discover the catalog,
// research jurisdiction mandates, match offerings against requirements, and
// turn every unmatched requirement into a scored gap opportunity.
package audit

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"gapaudit/internal/catalog"
	"gapaudit/internal/mandate"
	"gapaudit/internal/match"
	"gapaudit/internal/opportunity"
	"gapaudit/internal/pipeline"
	"gapaudit/internal/research"
)

// Stage names double as keys in RunResult.StageOutputs.
const (
	StageCatalog      = "catalog-collection"
	StageRequirements = "requirement-research"
	StageMatching     = "catalog-matching"
	StageMarket       = "market-pricing"
	StageScoring      = "opportunity-scoring"
	StageNarrative    = "narrative-synthesis"
)

// Scratch keys passed between stages via State.Outputs.
const (
	scratchUnmatched = "unmatched"
	scratchPrices    = "market-prices"
)

// MatchOutcome pairs a requirement with its catalog match decision.
type MatchOutcome struct {
	Requirement *mandate.RequirementRecord `json:"requirement"`
	Decision    match.Decision             `json:"decision"`
}

// Report is the structured outcome of one audit run.
type Report struct {
	RunID              string            `json:"run_id"`
	Identity           research.Identity `json:"identity"`
	CatalogPrograms    []string          `json:"catalog_programs"`
	Requirements       int               `json:"requirements_found"`
	Matches            []MatchOutcome    `json:"matches"`
	Gaps               *opportunity.Gaps `json:"gaps"`
	TotalAnnualRevenue int               `json:"total_annual_revenue"`
	Narrative          string            `json:"narrative,omitempty"`
	Degraded           bool              `json:"degraded"`
}

// Deps are the collaborators and knobs one audit run needs. Market and
// Narrative are optional; their stages degrade gracefully when nil.
type Deps struct {
	Identity research.Identity

	Catalog      research.CatalogCollector
	Requirements research.RequirementResearcher
	Market       research.MarketPriceLookup
	Narrative    research.NarrativeSynthesizer
	Throttle     *research.Throttle

	MatchConfig match.Config
	ModelConfig opportunity.ModelConfig

	BatchLimit    int
	SkipNarrative bool

	Logger *zap.Logger
}

// Assembly wires the audit stages onto the orchestrator. Single-use: build
// one per run.
type Assembly struct {
	deps         Deps
	orchestrator *pipeline.Orchestrator
	engine       *match.Engine
	builder      *opportunity.Builder
	report       *Report
}

// New validates the run identity and builds the stage chain. A missing
// institution or jurisdiction is a configuration error before any stage runs.
func New(deps Deps) (*Assembly, error) {
	if deps.Identity.Institution == "" {
		return nil, &pipeline.ConfigurationError{Field: "institution", Message: "institution name is required"}
	}
	if deps.Identity.Jurisdiction == "" {
		return nil, &pipeline.ConfigurationError{Field: "jurisdiction", Message: "jurisdiction is required"}
	}
	if deps.Catalog == nil || deps.Requirements == nil {
		return nil, &pipeline.ConfigurationError{Message: "catalog collector and requirement researcher are required"}
	}
	if deps.Throttle == nil {
		deps.Throttle = research.NewThrottle(-1, 0)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	a := &Assembly{
		deps:    deps,
		engine:  match.NewEngine(deps.MatchConfig),
		builder: opportunity.NewBuilder(opportunity.NewRevenueModel(deps.ModelConfig), opportunity.NewScorer()),
		report:  &Report{Identity: deps.Identity},
	}

	a.orchestrator = pipeline.New([]pipeline.Stage{
		{Name: StageCatalog, Run: a.collectCatalog},
		{Name: StageRequirements, Fatal: true, Run: a.researchRequirements},
		{Name: StageMatching, Fatal: true, Run: a.matchCatalog},
		{Name: StageMarket, Run: a.lookupMarketPrices},
		{Name: StageScoring, Fatal: true, Run: a.scoreGaps},
		{Name: StageNarrative, Run: a.synthesizeNarrative},
	}, deps.Logger)

	return a, nil
}

// Subscribe attaches a progress observer. Must be called before Run.
func (a *Assembly) Subscribe(s pipeline.Subscriber) {
	a.orchestrator.Subscribe(s)
}

// Run executes the audit. The report is nil when the run aborted on a fatal
// stage; callers branch on the result status first.
func (a *Assembly) Run(ctx context.Context) (*Report, *pipeline.RunResult) {
	result := a.orchestrator.Run(ctx)
	a.report.RunID = result.RunID
	a.report.Degraded = result.Degraded
	if result.Status == pipeline.StatusError {
		return nil, result
	}
	return a.report, result
}

// collectCatalog is non-fatal: a failed collection leaves an empty catalog
// behind so every requirement downstream is treated as a gap.
func (a *Assembly) collectCatalog(ctx context.Context, st *pipeline.State) error {
	programs, err := a.deps.Catalog.Collect(ctx, a.deps.Identity)
	if programs == nil {
		programs = &catalog.Programs{}
	}
	a.report.CatalogPrograms = programs.Names()
	st.Outputs[StageCatalog] = programs
	st.Result.StageOutputs[StageCatalog] = programs.Names()
	st.Result.Stats["programs_discovered"] = programs.Len()

	if err != nil {
		return &pipeline.CollectionError{
			Source:  "catalog",
			Message: "catalog discovery failed; treating every requirement as a gap",
			Err:     err,
		}
	}
	return nil
}

func (a *Assembly) researchRequirements(ctx context.Context, st *pipeline.State) error {
	reqs, err := a.deps.Requirements.Research(ctx, a.deps.Identity)
	if err != nil {
		return &pipeline.CollectionError{
			Source:  "requirements",
			Message: "requirement research failed",
			Err:     err,
		}
	}
	if reqs.Len() == 0 {
		return &pipeline.CollectionError{
			Source:  "requirements",
			Message: fmt.Sprintf("no training mandates found for %s; nothing to audit", a.deps.Identity.Jurisdiction),
		}
	}

	a.report.Requirements = reqs.Len()
	st.Outputs[StageRequirements] = reqs
	st.Result.StageOutputs[StageRequirements] = reqs.Occupations()
	st.Result.Stats["requirements_found"] = reqs.Len()
	return nil
}

func (a *Assembly) matchCatalog(_ context.Context, st *pipeline.State) error {
	programs := st.Outputs[StageCatalog].(*catalog.Programs)
	reqs := st.Outputs[StageRequirements].(*mandate.Requirements)

	var unmatched []*mandate.RequirementRecord
	for _, req := range reqs.Items {
		decision := a.engine.IsAlreadyOffered(req, programs)
		a.report.Matches = append(a.report.Matches, MatchOutcome{Requirement: req, Decision: decision})
		if !decision.Matched {
			unmatched = append(unmatched, req)
		}
	}

	st.Outputs[scratchUnmatched] = unmatched
	st.Result.StageOutputs[StageMatching] = a.report.Matches
	st.Result.Stats["requirements_matched"] = reqs.Len() - len(unmatched)
	st.Result.Stats["requirements_unmatched"] = len(unmatched)
	return nil
}

// lookupMarketPrices fans out the only parallel sub-step. Non-fatal: prices
// gathered before a failure are kept and the formula covers the rest.
func (a *Assembly) lookupMarketPrices(ctx context.Context, st *pipeline.State) error {
	unmatched := st.Outputs[scratchUnmatched].([]*mandate.RequirementRecord)
	prices := make(map[string]int)
	st.Outputs[scratchPrices] = prices

	if a.deps.Market == nil || len(unmatched) == 0 {
		st.Result.Stats["market_prices_verified"] = 0
		return nil
	}

	var mu sync.Mutex
	calls := make([]func(context.Context) error, 0, len(unmatched))
	for _, req := range unmatched {
		req := req
		calls = append(calls, func(callCtx context.Context) error {
			price, ok, err := a.deps.Market.Price(callCtx, req.Occupation, a.deps.Identity.Location)
			if err != nil {
				return fmt.Errorf("price %q: %w", req.Occupation, err)
			}
			if ok {
				mu.Lock()
				prices[req.Occupation] = price
				mu.Unlock()
			}
			return nil
		})
	}

	err := a.deps.Throttle.Batch(ctx, a.deps.BatchLimit, calls)
	st.Result.Stats["market_prices_verified"] = len(prices)
	if err != nil {
		return &pipeline.CollectionError{
			Source:  "market pricing",
			Message: "market lookups failed; unverified gaps fall back to formula tuition",
			Err:     err,
		}
	}
	return nil
}

func (a *Assembly) scoreGaps(_ context.Context, st *pipeline.State) error {
	unmatched := st.Outputs[scratchUnmatched].([]*mandate.RequirementRecord)
	prices := st.Outputs[scratchPrices].(map[string]int)

	gaps := &opportunity.Gaps{}
	for _, req := range unmatched {
		gaps.Items = append(gaps.Items, a.builder.Build(req, prices[req.Occupation]))
	}

	a.report.Gaps = gaps
	a.report.TotalAnnualRevenue = gaps.TotalAnnualRevenue()
	st.Result.StageOutputs[StageScoring] = gaps
	st.Result.Stats["gaps_identified"] = gaps.Len()
	st.Result.Stats["total_annual_revenue"] = a.report.TotalAnnualRevenue
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
