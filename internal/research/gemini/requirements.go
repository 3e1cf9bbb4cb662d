package gemini

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"gapaudit/internal/extract"
	"gapaudit/internal/logger"
	"gapaudit/internal/mandate"
	"gapaudit/internal/research"
)

//go:embed requirements_prompt.md
var requirementsPromptTemplate string

// Researcher gathers jurisdiction training mandates through Gemini.
type Researcher struct {
	generator contentGenerator
	throttle  *research.Throttle
	logger    *zap.Logger
	maxLogLen int
}

func NewResearcher(generator contentGenerator, throttle *research.Throttle, log *zap.Logger) *Researcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Researcher{
		generator: generator,
		throttle:  throttle,
		logger:    log,
		maxLogLen: 200,
	}
}

func (r *Researcher) Research(ctx context.Context, id research.Identity) (*mandate.Requirements, error) {
	prompt := strings.ReplaceAll(requirementsPromptTemplate, "{{JURISDICTION}}", id.Jurisdiction)
	prompt = strings.ReplaceAll(prompt, "{{LOCATION}}", id.Location)

	var raw string
	err := r.throttle.Do(ctx, "requirement research", func(callCtx context.Context) error {
		var genErr error
		raw, genErr = r.generator.GenerateContent(callCtx, prompt)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("requirement research response",
		zap.String("preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	var records []*mandate.RequirementRecord
	if err := extract.Decode(raw, mandate.Schema, &records); err != nil {
		return nil, fmt.Errorf("requirement records: %w", err)
	}

	// The model occasionally improvises demand wording; fold it back onto
	// the three-level scale.
	for _, rec := range records {
		rec.DemandLevel = mandate.ParseDemandLevel(string(rec.DemandLevel))
	}

	r.logger.Info("requirements researched",
		zap.String("jurisdiction", id.Jurisdiction),
		zap.Int("count", len(records)),
	)
	return &mandate.Requirements{Items: records}, nil
}
