package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"gapaudit/internal/research"
)

type stubGenerator struct {
	responses []string
	errs      []error
	prompts   []string
	calls     int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	idx := s.calls
	s.calls++
	s.prompts = append(s.prompts, prompt)

	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return "", errors.New("stub exhausted")
}

type stubFetcher struct {
	text string
	err  error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

func testThrottle() *research.Throttle {
	return research.NewThrottle(0, time.Second)
}

func testIdentity() research.Identity {
	return research.Identity{
		Institution:  "Riverside Community College",
		Location:     "Riverside, CA",
		Jurisdiction: "California",
	}
}

func TestCollectFacts(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{
		"```json\n[{\"name\": \"Practical Nursing\", \"clock_hours\": 720, \"weeks\": 36}, {\"name\": \"Phlebotomy\"}]\n```",
	}}

	collector := NewCollector(generator, nil, testThrottle(), zap.NewNop())

	facts, err := collector.CollectFacts(context.Background(), testIdentity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}
	if facts[0].Name != "Practical Nursing" || facts[0].ClockHours != 720 {
		t.Fatalf("unexpected first fact: %+v", facts[0])
	}

	if !strings.Contains(generator.prompts[0], "Riverside Community College") {
		t.Fatalf("expected institution in prompt")
	}
}

func TestCollectFactsSeedPage(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{`[{"name": "Welding"}]`}}
	fetcher := &stubFetcher{text: "<h1>Course Catalog</h1> Welding 240 hours"}

	collector := NewCollector(generator, fetcher, testThrottle(), zap.NewNop())

	id := testIdentity()
	id.CatalogURL = "https://example.edu/catalog"

	if _, err := collector.CollectFacts(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(generator.prompts[0], "Course Catalog") {
		t.Fatalf("expected fetched page text in prompt")
	}
}

func TestCollectFactsSeedPageFailureDowngrades(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{`[{"name": "Welding"}]`}}
	fetcher := &stubFetcher{err: errors.New("connection refused")}

	collector := NewCollector(generator, fetcher, testThrottle(), zap.NewNop())

	id := testIdentity()
	id.CatalogURL = "https://example.edu/catalog"

	facts, err := collector.CollectFacts(context.Background(), id)
	if err != nil {
		t.Fatalf("expected fetch failure to downgrade, got %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
}

func TestCollectFactsInvalidBlob(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{`[{"clock_hours": 720}]`}}

	collector := NewCollector(generator, nil, testThrottle(), zap.NewNop())

	if _, err := collector.CollectFacts(context.Background(), testIdentity()); err == nil {
		t.Fatalf("expected schema validation error")
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{
		`[{"name": "Certified Nurse Aide (CNA) Training"}]`,
	}}

	collector := NewCollector(generator, nil, testThrottle(), zap.NewNop())

	programs, err := collector.Collect(context.Background(), testIdentity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if programs.Len() != 1 {
		t.Fatalf("expected 1 program, got %d", programs.Len())
	}
	if programs.Items[0].NormalizedName != "certified nurse aide training" {
		t.Fatalf("unexpected normalized name: %q", programs.Items[0].NormalizedName)
	}
}
