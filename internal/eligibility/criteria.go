package eligibility

// CriterionStatus is the researcher-supplied verdict for one rubric item.
type CriterionStatus string

const (
	StatusMet          CriterionStatus = "met"
	StatusLikelyMet    CriterionStatus = "likely-met"
	StatusUncertain    CriterionStatus = "uncertain"
	StatusLikelyNotMet CriterionStatus = "likely-not-met"
	StatusNotMet       CriterionStatus = "not-met"
)

// The eight fixed criteria, split into two four-item tiers. Tier A covers
// institutional and programmatic fit; tier B covers outcomes and operational
// readiness.
const (
	CriterionAccreditation      = "institutional-accreditation"
	CriterionStateAuthorization = "state-authorization"
	CriterionTitleIV            = "title-iv-participation"
	CriterionProgramLength      = "program-length-fit"

	CriterionCompletionRate = "completion-rate"
	CriterionPlacementRate  = "job-placement-rate"
	CriterionEarnings       = "earnings-outcomes"
	CriterionAdminCapacity  = "administrative-capacity"
)

// TierACriteria and TierBCriteria fix the rubric order; scoring and
// reporting both iterate these slices so output order is deterministic.
var (
	TierACriteria = []string{
		CriterionAccreditation,
		CriterionStateAuthorization,
		CriterionTitleIV,
		CriterionProgramLength,
	}
	TierBCriteria = []string{
		CriterionCompletionRate,
		CriterionPlacementRate,
		CriterionEarnings,
		CriterionAdminCapacity,
	}
)

// CriterionScore is one researcher-supplied rubric entry with its evidence.
type CriterionScore struct {
	Criterion string          `json:"criterion" mapstructure:"criterion"`
	Status    CriterionStatus `json:"status" mapstructure:"status"`
	Evidence  string          `json:"evidence" mapstructure:"evidence"`
	Source    string          `json:"source" mapstructure:"source"`
}

// CriteriaSchema validates researcher rubric output before decoding.
const CriteriaSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["criterion", "status"],
    "properties": {
      "criterion": {"type": "string", "minLength": 1},
      "status": {
        "type": "string",
        "enum": ["met", "likely-met", "uncertain", "likely-not-met", "not-met"]
      },
      "evidence": {"type": "string"},
      "source": {"type": "string"}
    }
  }
}`

// statusPoints maps a status to its contribution on the 0-100 tier scale.
func statusPoints(status CriterionStatus) int {
	switch status {
	case StatusMet:
		return 100
	case StatusLikelyMet:
		return 75
	case StatusUncertain:
		return 50
	case StatusLikelyNotMet:
		return 25
	default:
		return 0
	}
}
