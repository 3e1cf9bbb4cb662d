package gemini

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"gapaudit/internal/eligibility"
	"gapaudit/internal/extract"
	"gapaudit/internal/research"
)

//go:embed criteria_prompt.md
var criteriaPromptTemplate string

// CriteriaResearcher judges each eligibility rubric criterion for one
// program. The scorer treats anything it cannot judge as uncertain; this
// researcher only reports what it found evidence for.
type CriteriaResearcher struct {
	generator contentGenerator
	throttle  *research.Throttle
	logger    *zap.Logger
}

func NewCriteriaResearcher(generator contentGenerator, throttle *research.Throttle, log *zap.Logger) *CriteriaResearcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &CriteriaResearcher{generator: generator, throttle: throttle, logger: log}
}

func (r *CriteriaResearcher) Criteria(ctx context.Context, id research.Identity, programName string) ([]*eligibility.CriterionScore, error) {
	prompt := strings.ReplaceAll(criteriaPromptTemplate, "{{INSTITUTION}}", id.Institution)
	prompt = strings.ReplaceAll(prompt, "{{PROGRAM}}", programName)
	prompt = strings.ReplaceAll(prompt, "{{LOCATION}}", id.Location)

	var raw string
	err := r.throttle.Do(ctx, "criteria research", func(callCtx context.Context) error {
		var genErr error
		raw, genErr = r.generator.GenerateContent(callCtx, prompt)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	var scores []*eligibility.CriterionScore
	if err := extract.Decode(raw, eligibility.CriteriaSchema, &scores); err != nil {
		return nil, fmt.Errorf("criterion scores: %w", err)
	}

	r.logger.Info("criteria researched",
		zap.String("program", programName),
		zap.Int("count", len(scores)),
	)
	return scores, nil
}
