package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"gapaudit/internal/research"
)

//go:embed narrative_prompt.md
var narrativePromptTemplate string

// Synthesizer renders the finished structured result as prose. Pure
// rendering: nothing it produces feeds back into scoring.
type Synthesizer struct {
	generator contentGenerator
	throttle  *research.Throttle
	logger    *zap.Logger
}

func NewSynthesizer(generator contentGenerator, throttle *research.Throttle, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{generator: generator, throttle: throttle, logger: log}
}

func (s *Synthesizer) Synthesize(ctx context.Context, structured any) (string, error) {
	payload, err := json.MarshalIndent(structured, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal structured result: %w", err)
	}

	prompt := strings.ReplaceAll(narrativePromptTemplate, "{{RESULT_JSON}}", string(payload))

	var report string
	err = s.throttle.Do(ctx, "narrative synthesis", func(callCtx context.Context) error {
		var genErr error
		report, genErr = s.generator.GenerateContent(callCtx, prompt)
		return genErr
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("narrative synthesized", zap.Int("length", len(report)))
	return report, nil
}
