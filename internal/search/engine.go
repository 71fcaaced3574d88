// Package search answers queries against a built index by blending three
// independently normalized signals: query-term frequency, earliest
// query-term position, and link-derived page authority.
package search

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wikirank/wikirank/internal/index"
	"github.com/wikirank/wikirank/pkg/config"
)

const (
	// missingTermPenalty is added to the raw location score for every
	// query term absent from a candidate page.
	missingTermPenalty = 100000

	// minDenominator clamps every normalization divisor away from zero.
	minDenominator = 0.00001
)

// Hit is one ranked result: the page ID, the blended total, and the three
// rounded component scores it was built from.
type Hit struct {
	ID        string  `json:"id"`
	Total     float64 `json:"total"`
	Content   float64 `json:"content"`
	Location  float64 `json:"location"`
	Authority float64 `json:"authority"`
}

// Result is the answer to one query: the ranked top hits, the candidate
// count before truncation, and the measured wall-clock duration.
type Result struct {
	Data     []Hit         `json:"data"`
	Amount   int           `json:"amount"`
	Duration time.Duration `json:"duration"`
}

// Engine serves queries against an immutable store. It is safe for
// unlimited concurrent callers once ingestion and the authority solve have
// completed.
type Engine struct {
	store           *index.Store
	dict            *index.Dictionary
	maxResults      int
	locationWeight  float64
	authorityWeight float64
	logger          *slog.Logger
}

// NewEngine creates an Engine over the given store.
func NewEngine(store *index.Store, ranking config.RankingConfig, maxResults int) *Engine {
	return &Engine{
		store:           store,
		dict:            store.Dictionary(),
		maxResults:      maxResults,
		locationWeight:  ranking.LocationWeight,
		authorityWeight: ranking.AuthorityWeight,
		logger:          slog.Default().With("component", "query-engine"),
	}
}

type candidate struct {
	page     *index.Page
	content  float64
	location float64
}

// Query tokenizes text by whitespace, lowercases it, and ranks every page
// containing at least one query term. Looking up a query term registers it
// in the shared dictionary if unseen; the fresh ID then matches no page.
// Zero candidates is not an error: the result is simply empty.
func (e *Engine) Query(text string) Result {
	start := time.Now()

	queryIDs := make([]int, 0, 4)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		queryIDs = append(queryIDs, e.dict.IDFor(word))
	}

	candidates := e.collect(queryIDs)
	normalizeHigherBetter(candidates, func(c *candidate) *float64 { return &c.content })
	normalizeLowerBetter(candidates, func(c *candidate) *float64 { return &c.location })

	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		content := round2(c.content)
		location := round2(c.location * e.locationWeight)
		authority := round2(c.page.Authority * e.authorityWeight)
		hits = append(hits, Hit{
			ID:        c.page.ID,
			Total:     round2(content + location + authority),
			Content:   content,
			Location:  location,
			Authority: authority,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Total != hits[j].Total {
			return hits[i].Total > hits[j].Total
		}
		return hits[i].ID < hits[j].ID
	})

	amount := len(hits)
	if len(hits) > e.maxResults {
		hits = hits[:e.maxResults]
	}
	return Result{
		Data:     hits,
		Amount:   amount,
		Duration: time.Since(start),
	}
}

// collect walks every page once, computing the raw content and location
// scores for pages containing at least one query term.
func (e *Engine) collect(queryIDs []int) []*candidate {
	if len(queryIDs) == 0 {
		return nil
	}
	want := make(map[int]struct{}, len(queryIDs))
	for _, id := range queryIDs {
		want[id] = struct{}{}
	}

	candidates := make([]*candidate, 0)
	for _, page := range e.store.Pages() {
		counts := make(map[int]int, len(queryIDs))
		firsts := make(map[int]int, len(queryIDs))
		for pos, id := range page.Terms {
			if _, ok := want[id]; !ok {
				continue
			}
			if _, ok := firsts[id]; !ok {
				firsts[id] = pos
			}
			counts[id]++
		}

		content := 0.0
		location := 0.0
		matched := false
		for _, id := range queryIDs {
			if n := counts[id]; n > 0 {
				matched = true
				content += float64(n)
				location += float64(firsts[id]) + 1
			} else {
				location += missingTermPenalty
			}
		}
		if matched {
			candidates = append(candidates, &candidate{
				page:     page,
				content:  content,
				location: location,
			})
		}
	}
	return candidates
}

// normalizeHigherBetter scales values into (0, 1] by dividing by the set
// maximum, larger staying better.
func normalizeHigherBetter(candidates []*candidate, field func(*candidate) *float64) {
	if len(candidates) == 0 {
		return
	}
	max := 0.0
	for _, c := range candidates {
		if v := *field(c); v > max {
			max = v
		}
	}
	if max < minDenominator {
		max = minDenominator
	}
	for _, c := range candidates {
		*field(c) /= max
	}
}

// normalizeLowerBetter maps "lower is better" values into (0, 1] so the set
// minimum becomes 1.0 and larger values fall toward zero.
func normalizeLowerBetter(candidates []*candidate, field func(*candidate) *float64) {
	if len(candidates) == 0 {
		return
	}
	min := math.Inf(1)
	for _, c := range candidates {
		if v := *field(c); v < min {
			min = v
		}
	}
	for _, c := range candidates {
		denom := *field(c)
		if denom < minDenominator {
			denom = minDenominator
		}
		*field(c) = min / denom
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
