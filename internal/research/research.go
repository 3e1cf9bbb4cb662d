// Package research defines the external collaborators the pipeline depends
// on: catalog discovery, requirement research, market pricing, wage data and
// narrative synthesis. The pipeline only ever sees these interfaces, so
// tests substitute instant in-memory fakes.
package research

import (
	"context"

	"gapaudit/internal/catalog"
	"gapaudit/internal/eligibility"
	"gapaudit/internal/mandate"
)

// Identity names the institution and jurisdiction a run audits. Both
// commands fail fast with a configuration error when the fields they need
// are empty.
type Identity struct {
	Institution  string `mapstructure:"institution"`
	Location     string `mapstructure:"location"`
	Jurisdiction string `mapstructure:"jurisdiction"`
	// CatalogURL optionally seeds catalog discovery with a page to fetch.
	CatalogURL string `mapstructure:"catalog-url"`
}

// CatalogCollector discovers the institution's current offerings. A failed
// collection returns an empty catalog plus an error; the audit pipeline
// treats that as non-fatal and continues with every requirement as a gap.
type CatalogCollector interface {
	Collect(ctx context.Context, id Identity) (*catalog.Programs, error)
}

// FactsCollector discovers offerings together with whatever duration facts
// the catalog states. Used by the eligibility pipeline, where the catalog
// is the subject of the run and its absence is fatal.
type FactsCollector interface {
	CollectFacts(ctx context.Context, id Identity) ([]eligibility.ProgramFacts, error)
}

// RequirementResearcher gathers the jurisdiction's training mandates.
// An empty result is fatal: no report is possible without requirements.
type RequirementResearcher interface {
	Research(ctx context.Context, id Identity) (*mandate.Requirements, error)
}

// MarketPriceLookup resolves a verified tuition figure for an occupation in
// a location. ok is false when no verified figure exists; the revenue
// formula applies and the absence is never fatal.
type MarketPriceLookup interface {
	Price(ctx context.Context, occupation, location string) (price int, ok bool, err error)
}

// WageDataLookup resolves the annual median wage for an occupation code.
// ok is false when wage data is unavailable, which marks the earnings
// criterion uncertain.
type WageDataLookup interface {
	MedianWage(ctx context.Context, occupationCode string) (wage float64, ok bool, err error)
}

// CriteriaResearcher supplies the researcher-judged status of each
// eligibility rubric criterion.
type CriteriaResearcher interface {
	Criteria(ctx context.Context, id Identity, programName string) ([]*eligibility.CriterionScore, error)
}

// NarrativeSynthesizer renders the finished structured result as prose.
// Pure rendering: nothing it produces feeds back into scoring.
type NarrativeSynthesizer interface {
	Synthesize(ctx context.Context, structured any) (string, error)
}
