package gemini

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestMarketLookupVerified(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{
		`{"tuition": 6200, "verified": true, "source": "Example Barber College"}`,
	}}

	lookup := NewMarketLookup(generator, testThrottle(), zap.NewNop())

	price, ok, err := lookup.Price(context.Background(), "Barber", "Riverside, CA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || price != 6200 {
		t.Fatalf("expected verified 6200, got ok=%v price=%d", ok, price)
	}
}

func TestMarketLookupUnverified(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{
		`{"tuition": null, "verified": false}`,
	}}

	lookup := NewMarketLookup(generator, testThrottle(), zap.NewNop())

	price, ok, err := lookup.Price(context.Background(), "Barber", "Riverside, CA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || price != 0 {
		t.Fatalf("expected no verified price, got ok=%v price=%d", ok, price)
	}
}

func TestMarketLookupMemoized(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{
		`{"tuition": 6200, "verified": true}`,
	}}

	lookup := NewMarketLookup(generator, testThrottle(), zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, _, err := lookup.Price(context.Background(), "Barber", "Riverside, CA"); err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
	}

	if generator.calls != 1 {
		t.Fatalf("expected 1 generator call, got %d", generator.calls)
	}
}

func TestWageLookup(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{
		`{"median_wage": 38500, "source": "OES"}`,
	}}

	lookup := NewWageLookup(generator, testThrottle(), zap.NewNop())

	wage, ok, err := lookup.MedianWage(context.Background(), "39-5011")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || wage != 38500 {
		t.Fatalf("expected wage 38500, got ok=%v wage=%f", ok, wage)
	}
}

func TestWageLookupUnavailable(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{responses: []string{
		`{"median_wage": null}`,
	}}

	lookup := NewWageLookup(generator, testThrottle(), zap.NewNop())

	_, ok, err := lookup.MedianWage(context.Background(), "39-5011")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected wage to be unavailable")
	}
}
