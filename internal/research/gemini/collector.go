package gemini

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"gapaudit/internal/catalog"
	"gapaudit/internal/eligibility"
	"gapaudit/internal/extract"
	"gapaudit/internal/logger"
	"gapaudit/internal/research"
)

//go:embed catalog_prompt.md
var catalogPromptTemplate string

// factsSchema validates the extracted catalog listing before decoding.
const factsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "clock_hours": {"type": "integer", "minimum": 0},
      "credit_hours": {"type": "number", "minimum": 0},
      "weeks": {"type": "integer", "minimum": 0},
      "occupation_code": {"type": "string"}
    }
  }
}`

// pageFetcher is the slice of the HTTP fetcher the collector needs.
type pageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Collector discovers an institution's current offerings through Gemini
// research, optionally seeded with a fetched catalog page.
type Collector struct {
	generator contentGenerator
	fetcher   pageFetcher
	throttle  *research.Throttle
	logger    *zap.Logger
	maxLogLen int
}

func NewCollector(generator contentGenerator, fetcher pageFetcher, throttle *research.Throttle, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		generator: generator,
		fetcher:   fetcher,
		throttle:  throttle,
		logger:    log,
		maxLogLen: 200,
	}
}

// Collect returns the catalog as bare offerings.
func (c *Collector) Collect(ctx context.Context, id research.Identity) (*catalog.Programs, error) {
	facts, err := c.CollectFacts(ctx, id)
	if err != nil {
		return &catalog.Programs{}, err
	}

	programs := &catalog.Programs{}
	for _, f := range facts {
		programs.Items = append(programs.Items, catalog.NewProgram(f.Name))
	}
	return programs, nil
}

// CollectFacts returns offerings with whatever duration facts the catalog
// states. The seed page, when configured and reachable, is inlined into the
// extraction prompt; a fetch failure downgrades to pure research rather
// than failing collection.
func (c *Collector) CollectFacts(ctx context.Context, id research.Identity) ([]eligibility.ProgramFacts, error) {
	pageText := ""
	if c.fetcher != nil && strings.TrimSpace(id.CatalogURL) != "" {
		text, err := c.fetcher.Fetch(ctx, id.CatalogURL)
		if err != nil {
			c.logger.Warn("catalog seed page fetch failed, continuing without it",
				zap.String("url", id.CatalogURL),
				zap.Error(err),
			)
		} else {
			pageText = text
		}
	}

	prompt := strings.ReplaceAll(catalogPromptTemplate, "{{INSTITUTION}}", id.Institution)
	prompt = strings.ReplaceAll(prompt, "{{LOCATION}}", id.Location)
	prompt = strings.ReplaceAll(prompt, "{{PAGE_TEXT}}", pageText)

	var raw string
	err := c.throttle.Do(ctx, "catalog collection", func(callCtx context.Context) error {
		var genErr error
		raw, genErr = c.generator.GenerateContent(callCtx, prompt)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("catalog collection response",
		zap.String("preview", logger.TruncateForLog(raw, c.maxLogLen)),
	)

	var facts []eligibility.ProgramFacts
	if err := extract.Decode(raw, factsSchema, &facts); err != nil {
		return nil, fmt.Errorf("catalog listing: %w", err)
	}

	c.logger.Info("catalog collected",
		zap.String("institution", id.Institution),
		zap.Int("count", len(facts)),
	)
	return facts, nil
}
