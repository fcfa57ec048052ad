package pipeline

import (
	"context"
	"testing"

	"github.com/payoffplan/payoff/internal/strategy"
)

func BenchmarkCompare(b *testing.B) {
	src := &fakeSource{loans: testLoans()}
	sim := testSim()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compare(ctx, src, strategy.Kinds, 250, sim, strategy.MissingAppend, nil); err != nil {
			b.Fatal(err)
		}
	}
}
