package benchmark

import (
	"fmt"
	"testing"

	"github.com/wikirank/wikirank/internal/index"
	"github.com/wikirank/wikirank/internal/search"
	"github.com/wikirank/wikirank/pkg/config"
)

func benchRanking() config.RankingConfig {
	return config.RankingConfig{
		Damping:         0.85,
		Iterations:      20,
		LocationWeight:  0.8,
		AuthorityWeight: 0.5,
	}
}

// BenchmarkQuery measures end-to-end query latency for corpora of varying
// sizes, with authority scores already solved.
func BenchmarkQuery(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	for _, numPages := range sizes {
		b.Run(fmt.Sprintf("pages_%d", numPages), func(b *testing.B) {
			store := buildGraph(numPages, 8)
			index.NewSolver(benchRanking()).Solve(store)
			engine := search.NewEngine(store, benchRanking(), 5)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				result := engine.Query("electric guitar pickup")
				_ = result
			}
		})
	}
}

// BenchmarkQueryTerms measures query latency with an increasing number of
// query terms on a fixed corpus.
func BenchmarkQueryTerms(b *testing.B) {
	queries := []struct {
		name  string
		query string
	}{
		{"terms_1", "guitar"},
		{"terms_3", "electric guitar pickup"},
		{"terms_6", "electric guitar pickup amplifier string fret"},
	}

	store := buildGraph(2000, 8)
	index.NewSolver(benchRanking()).Solve(store)
	engine := search.NewEngine(store, benchRanking(), 5)

	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				result := engine.Query(q.query)
				_ = result
			}
		})
	}
}

// BenchmarkQueryParallel measures concurrent query throughput.
func BenchmarkQueryParallel(b *testing.B) {
	store := buildGraph(2000, 8)
	index.NewSolver(benchRanking()).Solve(store)
	engine := search.NewEngine(store, benchRanking(), 5)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			result := engine.Query("electric guitar pickup")
			_ = result
		}
	})
}

// BenchmarkIndexBuild measures corpus indexing (dictionary registration and
// page storage) throughput.
func BenchmarkIndexBuild(b *testing.B) {
	sizes := []int{100, 1000}
	for _, numPages := range sizes {
		b.Run(fmt.Sprintf("pages_%d", numPages), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				store := buildGraph(numPages, 8)
				_ = store
			}
		})
	}
}
