package mandate

import (
	"encoding/json"
	"os"
	"strings"
)

// DemandLevel is the qualitative regional demand signal attached to a
// requirement by the researcher.
type DemandLevel string

const (
	DemandHigh   DemandLevel = "high"
	DemandMedium DemandLevel = "medium"
	DemandLow    DemandLevel = "low"
)

// ParseDemandLevel maps free-text demand wording onto the three-level scale,
// defaulting to low when the researcher was vague.
func ParseDemandLevel(s string) DemandLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "very high", "strong":
		return DemandHigh
	case "medium", "moderate":
		return DemandMedium
	default:
		return DemandLow
	}
}

// RequirementRecord is one jurisdiction-mandated training or licensing
// obligation. Supplied once per run by the requirement researcher and
// immutable for the run's lifetime.
type RequirementRecord struct {
	Occupation              string      `json:"occupation" mapstructure:"occupation"`
	RegulatoryBody          string      `json:"regulatory_body" mapstructure:"regulatory_body"`
	Statute                 string      `json:"statute" mapstructure:"statute"`
	TrainingRequirement     string      `json:"training_requirement" mapstructure:"training_requirement"`
	ClockHours              int         `json:"clock_hours" mapstructure:"clock_hours"`
	RenewalRequired         bool        `json:"renewal_required" mapstructure:"renewal_required"`
	DemandLevel             DemandLevel `json:"demand_level" mapstructure:"demand_level"`
	EstimatedRegionalDemand string      `json:"estimated_regional_demand" mapstructure:"estimated_regional_demand"`
	Source                  string      `json:"source" mapstructure:"source"`
}

// Requirements is the researched mandate set for one run.
type Requirements struct {
	Items []*RequirementRecord
}

func (r *Requirements) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

func (r *Requirements) Occupations() []string {
	occupations := make([]string, 0, r.Len())
	for _, item := range r.Items {
		occupations = append(occupations, item.Occupation)
	}
	return occupations
}

func (r *Requirements) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "requirements_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Schema is the JSON schema a researcher response must satisfy before a
// record list is decoded. Kept alongside the record type so the two cannot
// drift apart silently.
const Schema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["occupation"],
    "properties": {
      "occupation": {"type": "string", "minLength": 1},
      "regulatory_body": {"type": "string"},
      "statute": {"type": "string"},
      "training_requirement": {"type": "string"},
      "clock_hours": {"type": "integer", "minimum": 0},
      "renewal_required": {"type": "boolean"},
      "demand_level": {"type": "string", "enum": ["high", "medium", "low"]},
      "estimated_regional_demand": {"type": "string"},
      "source": {"type": "string"}
    }
  }
}`
