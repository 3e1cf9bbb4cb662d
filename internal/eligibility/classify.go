// Package eligibility classifies catalog offerings by funding-eligibility
// duration category and scores the 8-criterion readiness rubric.
package eligibility

import (
	"strings"

	"gapaudit/internal/catalog"
)

// PellCategory is the duration bucket an offering falls into under the
// clock-hour and week thresholds. This is a direct threshold classification,
// not fuzzy matching: the cutoffs are hard.
type PellCategory string

const (
	CategoryAlreadyEligible PellCategory = "already-eligible"
	CategoryCandidate       PellCategory = "candidate"
	CategoryTooShort        PellCategory = "too-short"
	CategoryTooLong         PellCategory = "too-long"
	CategoryUnclear         PellCategory = "unclear"
)

// Duration conversion ratios. One semester credit approximates 30 clock
// hours of combined instruction; a clock-hour program delivers roughly 24
// contact hours per week.
const (
	clockHoursPerCredit = 30
	clockHoursPerWeek   = 24
)

// Eligibility thresholds.
const (
	eligibleMinHours = 600
	eligibleMinWeeks = 15

	candidateMinHours = 150
	candidateMinWeeks = 8
	candidateMaxWeeks = 15
)

// ProgramFacts is what the catalog collector could learn about one
// offering's length. Zero values mean the catalog did not say.
type ProgramFacts struct {
	Name           string  `json:"name" mapstructure:"name"`
	ClockHours     int     `json:"clock_hours" mapstructure:"clock_hours"`
	CreditHours    float64 `json:"credit_hours" mapstructure:"credit_hours"`
	Weeks          int     `json:"weeks" mapstructure:"weeks"`
	OccupationCode string  `json:"occupation_code" mapstructure:"occupation_code"`
}

// ClassifiedProgram is an OfferedProgram enriched with duration estimates
// and its eligibility bucket.
type ClassifiedProgram struct {
	Program           *catalog.OfferedProgram `json:"program"`
	ClockHourEstimate int                     `json:"clock_hour_estimate"`
	WeekEstimate      int                     `json:"week_estimate"`
	PellCategory      PellCategory            `json:"pell_category"`
	OccupationCode    string                  `json:"occupation_code,omitempty"`
	Confidence        string                  `json:"confidence"`
}

var degreeTrackMarkers = [][]string{
	{"associate"}, {"bachelor"}, {"degree"},
	{"a", "a", "s"}, {"a", "s"}, {"diploma", "of"},
}

// Classify estimates clock hours and weeks from whatever the catalog stated
// and buckets the offering via the hard thresholds. Degree-track programs
// are too-long by definition regardless of stated hours.
func Classify(facts ProgramFacts) *ClassifiedProgram {
	program := catalog.NewProgram(facts.Name)

	hours := facts.ClockHours
	confidence := "stated"
	if hours == 0 && facts.CreditHours > 0 {
		hours = int(facts.CreditHours * clockHoursPerCredit)
		confidence = "converted-from-credits"
	}

	weeks := facts.Weeks
	if weeks == 0 && hours > 0 {
		weeks = hours / clockHoursPerWeek
		if weeks == 0 {
			weeks = 1
		}
		if confidence == "stated" {
			confidence = "weeks-derived"
		}
	}

	classified := &ClassifiedProgram{
		Program:           program,
		ClockHourEstimate: hours,
		WeekEstimate:      weeks,
		OccupationCode:    facts.OccupationCode,
		Confidence:        confidence,
	}

	classified.PellCategory = bucket(program.NormalizedName, hours, weeks)
	if classified.PellCategory == CategoryUnclear {
		classified.Confidence = "insufficient-data"
	}
	return classified
}

func bucket(normalizedName string, hours, weeks int) PellCategory {
	if isDegreeTrack(normalizedName) {
		return CategoryTooLong
	}

	if hours == 0 || weeks == 0 {
		return CategoryUnclear
	}

	switch {
	case hours < candidateMinHours || weeks < candidateMinWeeks:
		return CategoryTooShort
	case hours >= eligibleMinHours && weeks >= eligibleMinWeeks:
		return CategoryAlreadyEligible
	case hours < eligibleMinHours && weeks <= candidateMaxWeeks:
		return CategoryCandidate
	default:
		// Long on one axis only: enough weeks but not enough hours, or the
		// reverse. Treat as a candidate needing curriculum adjustment.
		return CategoryCandidate
	}
}

// isDegreeTrack matches the markers on word boundaries. Substring containment
// is too loose for the dotted abbreviations: "a s" occurs inside names like
// "cna skills lab" that have nothing to do with degree titles. Single-word
// markers match as token prefixes so plural forms still count.
func isDegreeTrack(normalizedName string) bool {
	tokens := strings.Fields(normalizedName)
	for _, marker := range degreeTrackMarkers {
		if len(marker) == 1 {
			for _, token := range tokens {
				if strings.HasPrefix(token, marker[0]) {
					return true
				}
			}
			continue
		}

		for i := 0; i+len(marker) <= len(tokens); i++ {
			matched := true
			for j, want := range marker {
				if tokens[i+j] != want {
					matched = false
					break
				}
			}
			if matched {
				return true
			}
		}
	}
	return false
}

// ClassifiedPrograms is the classification result for one run.
type ClassifiedPrograms struct {
	Items []*ClassifiedProgram
}

func (c *ClassifiedPrograms) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// ByCategory groups classifications for summary reporting.
func (c *ClassifiedPrograms) ByCategory() map[PellCategory][]*ClassifiedProgram {
	grouped := make(map[PellCategory][]*ClassifiedProgram)
	for _, item := range c.Items {
		grouped[item.PellCategory] = append(grouped[item.PellCategory], item)
	}
	return grouped
}
