package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	_ "embed"

	"go.uber.org/zap"

	"gapaudit/internal/extract"
	"gapaudit/internal/research"
)

//go:embed market_prompt.md
var marketPromptTemplate string

//go:embed wage_prompt.md
var wagePromptTemplate string

const marketPriceSchema = `{
  "type": "object",
  "required": ["verified"],
  "properties": {
    "tuition": {"type": ["integer", "null"], "minimum": 0},
    "verified": {"type": "boolean"},
    "source": {"type": "string"}
  }
}`

const wageSchema = `{
  "type": "object",
  "properties": {
    "median_wage": {"type": ["number", "null"], "minimum": 0},
    "source": {"type": "string"}
  }
}`

type marketPriceBlob struct {
	Tuition  *int   `mapstructure:"tuition"`
	Verified bool   `mapstructure:"verified"`
	Source   string `mapstructure:"source"`
}

type wageBlob struct {
	MedianWage *float64 `mapstructure:"median_wage"`
	Source     string   `mapstructure:"source"`
}

// MarketLookup resolves verified tuition figures. The memo map is scoped to
// one lookup instance, and assemblies construct one instance per run, so
// nothing is shared across concurrent runs. The mutex only guards the
// bounded batch fan-out within a single run.
type MarketLookup struct {
	generator contentGenerator
	throttle  *research.Throttle
	logger    *zap.Logger

	mu   sync.Mutex
	memo map[string]int
}

func NewMarketLookup(generator contentGenerator, throttle *research.Throttle, log *zap.Logger) *MarketLookup {
	if log == nil {
		log = zap.NewNop()
	}
	return &MarketLookup{
		generator: generator,
		throttle:  throttle,
		logger:    log,
		memo:      make(map[string]int),
	}
}

func (l *MarketLookup) Price(ctx context.Context, occupation, location string) (int, bool, error) {
	key := strings.ToLower(occupation + "|" + location)

	l.mu.Lock()
	if price, ok := l.memo[key]; ok {
		l.mu.Unlock()
		return price, price > 0, nil
	}
	l.mu.Unlock()

	prompt := strings.ReplaceAll(marketPromptTemplate, "{{OCCUPATION}}", occupation)
	prompt = strings.ReplaceAll(prompt, "{{LOCATION}}", location)

	var raw string
	err := l.throttle.Do(ctx, "market price lookup", func(callCtx context.Context) error {
		var genErr error
		raw, genErr = l.generator.GenerateContent(callCtx, prompt)
		return genErr
	})
	if err != nil {
		return 0, false, err
	}

	var blob marketPriceBlob
	if err := extract.Decode(raw, marketPriceSchema, &blob); err != nil {
		return 0, false, fmt.Errorf("market price: %w", err)
	}

	price := 0
	if blob.Verified && blob.Tuition != nil && *blob.Tuition > 0 {
		price = *blob.Tuition
	}

	l.mu.Lock()
	l.memo[key] = price
	l.mu.Unlock()

	if price > 0 {
		l.logger.Debug("verified market price",
			zap.String("occupation", occupation),
			zap.Int("tuition", price),
			zap.String("source", blob.Source),
		)
	}
	return price, price > 0, nil
}

// WageLookup resolves annual median wages by occupation code.
type WageLookup struct {
	generator contentGenerator
	throttle  *research.Throttle
	logger    *zap.Logger
}

func NewWageLookup(generator contentGenerator, throttle *research.Throttle, log *zap.Logger) *WageLookup {
	if log == nil {
		log = zap.NewNop()
	}
	return &WageLookup{generator: generator, throttle: throttle, logger: log}
}

func (l *WageLookup) MedianWage(ctx context.Context, occupationCode string) (float64, bool, error) {
	prompt := strings.ReplaceAll(wagePromptTemplate, "{{OCCUPATION_CODE}}", occupationCode)

	var raw string
	err := l.throttle.Do(ctx, "wage lookup", func(callCtx context.Context) error {
		var genErr error
		raw, genErr = l.generator.GenerateContent(callCtx, prompt)
		return genErr
	})
	if err != nil {
		return 0, false, err
	}

	var blob wageBlob
	if err := extract.Decode(raw, wageSchema, &blob); err != nil {
		return 0, false, fmt.Errorf("median wage: %w", err)
	}

	if blob.MedianWage == nil || *blob.MedianWage <= 0 {
		return 0, false, nil
	}
	return *blob.MedianWage, true, nil
}
