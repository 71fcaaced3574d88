package index

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wikirank/wikirank/pkg/config"
)

// minDenominator clamps every normalization divisor away from zero.
const minDenominator = 0.00001

// Solver computes the link-derived authority score for every page in a
// store. It runs a fixed number of damped iterations (no convergence test)
// and rescales the final score vector so the maximum is exactly 1.0.
//
// A page with no outlinks contributes its mass to nobody; dangling mass is
// deliberately not redistributed.
type Solver struct {
	damping    float64
	iterations int
	logger     *slog.Logger
}

// NewSolver creates a Solver from the ranking configuration.
func NewSolver(cfg config.RankingConfig) *Solver {
	return &Solver{
		damping:    cfg.Damping,
		iterations: cfg.Iterations,
		logger:     slog.Default().With("component", "authority-solver"),
	}
}

// Solve overwrites the Authority field of every page in the store. Each
// iteration reads only the previous iteration's completed score vector
// (Jacobi style): scores are double-buffered by page index, so the per-page
// computation parallelizes without further synchronization. An empty store
// is a no-op.
func (s *Solver) Solve(store *Store) {
	pages := store.Pages()
	n := len(pages)
	if n == 0 {
		return
	}
	start := time.Now()

	// The link graph is static, so resolve inlink indexes and outlink
	// degrees once up front instead of scanning every page per iteration.
	inlinks := make([][]int, n)
	outDegree := make([]float64, n)
	for j, q := range pages {
		outDegree[j] = float64(len(q.Outlinks))
		for target := range q.Outlinks {
			for _, i := range store.Indexes(target) {
				inlinks[i] = append(inlinks[i], j)
			}
		}
	}

	prev := make([]float64, n)
	next := make([]float64, n)
	for i, p := range pages {
		prev[i] = p.Authority
	}

	base := 1 - s.damping
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}

	for iter := 0; iter < s.iterations; iter++ {
		var g errgroup.Group
		chunk := (n + workers - 1) / workers
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := lo + chunk
			if hi > n {
				hi = n
			}
			if lo >= hi {
				break
			}
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					sum := 0.0
					for _, j := range inlinks[i] {
						sum += prev[j] / outDegree[j]
					}
					next[i] = s.damping*sum + base
				}
				return nil
			})
		}
		g.Wait()

		if iter == s.iterations-1 {
			rescale(next)
		}
		prev, next = next, prev
	}

	for i, p := range pages {
		p.Authority = prev[i]
	}
	s.logger.Info("authority solve complete",
		"pages", n,
		"iterations", s.iterations,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
}

// rescale divides the whole vector by its maximum, clamped away from zero,
// so the best-linked page scores exactly 1.0.
func rescale(scores []float64) {
	max := 0.0
	for _, v := range scores {
		if v > max {
			max = v
		}
	}
	if max < minDenominator {
		max = minDenominator
	}
	for i := range scores {
		scores[i] /= max
	}
}
