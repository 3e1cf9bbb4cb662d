// Package match decides whether a mandated occupation is already covered by
// a catalog offering.
//
// The comparison is a documented approximation: catalog names and regulatory
// occupation names rarely match verbatim ("CNA Training" vs. "Certified
// Nursing Assistant"), so the engine matches on keyword and substring overlap
// instead of exact identity. Every decision carries its rationale so a strict
// occupation-code crosswalk can replace the heuristic later without changing
// the pipeline contract.
package match

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gapaudit/internal/catalog"
	"gapaudit/internal/mandate"
)

// Config holds the tunable knobs of the matching heuristic. Stopwords and
// the keyword length cutoff are configuration, not constants: near-miss
// occupation names ("Electrical Technology" vs. "Electrical Engineering")
// are a known tradeoff operators may want to tune per jurisdiction.
type Config struct {
	Stopwords       []string `mapstructure:"stopwords"`
	MinKeywordRunes int      `mapstructure:"min-keyword-runes"`
}

// DefaultConfig returns the stock stopword list and keyword cutoff.
// Generic terms that appear in almost every program title carry no signal.
// Three-rune tokens are kept: regulatory acronyms (CNA, EMT, HHA) are
// usually exactly three runes and are the strongest match signal available.
func DefaultConfig() Config {
	return Config{
		Stopwords: []string{
			"the", "and", "for", "with",
			"program", "programs", "training", "course", "courses",
			"certificate", "certification", "certified", "license",
			"licensed", "licensure", "technician", "technology",
			"basic", "advanced", "introduction", "fundamentals",
		},
		MinKeywordRunes: 3,
	}
}

// Decision is the outcome of matching one requirement against the catalog.
type Decision struct {
	Matched        bool   `json:"matched"`
	OfferingName   string `json:"offering_name,omitempty"`
	MatchedKeyword string `json:"matched_keyword,omitempty"`
	Rationale      string `json:"rationale"`
	LowConfidence  bool   `json:"low_confidence"`
}

// Engine matches requirements against a catalog snapshot.
type Engine struct {
	stopwords map[string]struct{}
	minRunes  int
}

func NewEngine(cfg Config) *Engine {
	if cfg.MinKeywordRunes <= 0 {
		cfg.MinKeywordRunes = DefaultConfig().MinKeywordRunes
	}
	if len(cfg.Stopwords) == 0 {
		cfg.Stopwords = DefaultConfig().Stopwords
	}

	stopwords := make(map[string]struct{}, len(cfg.Stopwords))
	for _, w := range cfg.Stopwords {
		stopwords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	return &Engine{stopwords: stopwords, minRunes: cfg.MinKeywordRunes}
}

// Keywords extracts the comparison tokens from a name: fold case and
// punctuation (parenthetical acronyms stay inline), split on whitespace,
// drop stopwords and tokens shorter than the configured cutoff.
func (e *Engine) Keywords(name string) []string {
	folded := catalog.FoldForTokens(name)

	var keywords []string
	for _, token := range strings.Fields(folded) {
		if _, ok := e.stopwords[token]; ok {
			continue
		}
		if utf8.RuneCountInString(token) < e.minRunes {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

// IsAlreadyOffered reports whether any catalog offering satisfies the
// requirement. Containment is bidirectional: a requirement keyword found in
// an offering's normalized name counts, and so does an offering keyword
// found in the requirement's normalized occupation. The first hit wins;
// there is no partial-credit state.
func (e *Engine) IsAlreadyOffered(req *mandate.RequirementRecord, offerings *catalog.Programs) Decision {
	if offerings.Len() == 0 {
		return Decision{
			Matched:   false,
			Rationale: "catalog is empty; requirement treated as unmatched",
		}
	}

	reqKeywords := e.Keywords(req.Occupation)
	reqNormalized := catalog.Normalize(req.Occupation)

	for _, offering := range offerings.Items {
		for _, kw := range reqKeywords {
			if strings.Contains(offering.NormalizedName, kw) {
				return Decision{
					Matched:        true,
					OfferingName:   offering.Name,
					MatchedKeyword: kw,
					Rationale: fmt.Sprintf(
						"occupation keyword %q found in offering %q", kw, offering.Name),
					LowConfidence: len(reqKeywords) == 1,
				}
			}
		}

		for _, kw := range e.Keywords(offering.Name) {
			if strings.Contains(reqNormalized, kw) {
				return Decision{
					Matched:        true,
					OfferingName:   offering.Name,
					MatchedKeyword: kw,
					Rationale: fmt.Sprintf(
						"offering keyword %q found in occupation %q", kw, req.Occupation),
					LowConfidence: true,
				}
			}
		}
	}

	return Decision{
		Matched: false,
		Rationale: fmt.Sprintf(
			"no keyword overlap between %q and %d catalog offerings",
			req.Occupation, offerings.Len()),
	}
}
