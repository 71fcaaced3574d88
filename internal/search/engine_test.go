package search

import (
	"math"
	"sort"
	"testing"

	"github.com/wikirank/wikirank/internal/index"
	"github.com/wikirank/wikirank/pkg/config"
)

func testRanking() config.RankingConfig {
	return config.RankingConfig{
		Damping:         0.85,
		Iterations:      20,
		LocationWeight:  0.8,
		AuthorityWeight: 0.5,
	}
}

func newTestEngine(store *index.Store) *Engine {
	return NewEngine(store, testRanking(), 5)
}

func buildStore(pages map[string][]string) *index.Store {
	store := index.NewStore(index.NewDictionary())
	for _, id := range sortedKeys(pages) {
		store.Add(id, pages[id], nil)
	}
	return store
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestQueryCandidateSelection(t *testing.T) {
	store := buildStore(map[string][]string{
		"X": {"guitar", "guitar", "amp"},
		"Y": {"amp"},
	})
	engine := newTestEngine(store)

	result := engine.Query("guitar")

	if result.Amount != 1 {
		t.Fatalf("Amount = %d, want 1 (only X contains guitar)", result.Amount)
	}
	if result.Data[0].ID != "X" {
		t.Errorf("top hit = %q, want X", result.Data[0].ID)
	}
}

func TestQuerySingleCandidateScores(t *testing.T) {
	store := buildStore(map[string][]string{
		"X": {"guitar", "guitar", "amp"},
		"Y": {"amp"},
	})
	engine := newTestEngine(store)

	hit := engine.Query("guitar").Data[0]

	// sole candidate: content normalizes to 1.0, first occurrence at
	// position 0 gives the minimum location, also 1.0 after inversion
	if hit.Content != 1.0 {
		t.Errorf("content = %v, want 1.0", hit.Content)
	}
	if hit.Location != 0.8 {
		t.Errorf("location = %v, want 0.8 (1.0 * weight)", hit.Location)
	}
	if hit.Authority != 0.5 {
		t.Errorf("authority = %v, want 0.5 (initial 1.0 * weight)", hit.Authority)
	}
	if hit.Total != 2.3 {
		t.Errorf("total = %v, want 2.3", hit.Total)
	}
}

func TestQueryContentFrequencyOrdering(t *testing.T) {
	store := buildStore(map[string][]string{
		"often":  {"guitar", "guitar", "guitar", "guitar"},
		"rarely": {"guitar", "amp", "amp", "amp"},
	})
	engine := newTestEngine(store)

	result := engine.Query("guitar")

	if result.Amount != 2 {
		t.Fatalf("Amount = %d, want 2", result.Amount)
	}
	if result.Data[0].ID != "often" {
		t.Errorf("top hit = %q, want the higher-frequency page", result.Data[0].ID)
	}
	if result.Data[0].Content != 1.0 {
		t.Errorf("top content = %v, want 1.0", result.Data[0].Content)
	}
	if got := result.Data[1].Content; got != 0.25 {
		t.Errorf("second content = %v, want 0.25 (1 of 4 occurrences)", got)
	}
}

func TestQueryLocationFavorsEarlyOccurrence(t *testing.T) {
	store := buildStore(map[string][]string{
		"early": {"guitar", "amp", "amp"},
		"late":  {"amp", "amp", "guitar"},
	})
	engine := newTestEngine(store)

	result := engine.Query("guitar")

	byID := make(map[string]Hit, len(result.Data))
	for _, h := range result.Data {
		byID[h.ID] = h
	}
	// raw locations: early = 1, late = 3; min/value gives 1.0 and 1/3
	if got := byID["early"].Location; got != 0.8 {
		t.Errorf("early location = %v, want 0.8", got)
	}
	if got := byID["late"].Location; got != 0.27 {
		t.Errorf("late location = %v, want 0.27 (round2(1/3 * 0.8))", got)
	}
}

func TestQueryMissingTermPenalty(t *testing.T) {
	store := buildStore(map[string][]string{
		"both": {"guitar", "amp"},
		"one":  {"guitar", "pickup"},
	})
	engine := newTestEngine(store)

	result := engine.Query("guitar amp")

	byID := make(map[string]Hit, len(result.Data))
	for _, h := range result.Data {
		byID[h.ID] = h
	}
	if got := byID["both"].Location; got != 0.8 {
		t.Errorf("both-terms location = %v, want 0.8", got)
	}
	// penalized page: (1+2) / (1 + 100000) ~ 0 after rounding
	if got := byID["one"].Location; got != 0.0 {
		t.Errorf("penalized location = %v, want 0.0", got)
	}
	if byID["both"].Total <= byID["one"].Total {
		t.Errorf("page with all terms (%v) should outrank penalized page (%v)",
			byID["both"].Total, byID["one"].Total)
	}
}

func TestQueryNormalizedSignalBounds(t *testing.T) {
	store := buildStore(map[string][]string{
		"a": {"guitar", "guitar", "guitar"},
		"b": {"amp", "guitar"},
		"c": {"amp", "pickup", "guitar", "guitar"},
	})
	engine := NewEngine(store, config.RankingConfig{
		Damping: 0.85, Iterations: 20, LocationWeight: 1.0, AuthorityWeight: 0,
	}, 5)

	result := engine.Query("guitar")

	for _, h := range result.Data {
		if h.Content <= 0 || h.Content > 1 {
			t.Errorf("page %s content %v outside (0,1]", h.ID, h.Content)
		}
		if h.Location <= 0 || h.Location > 1 {
			t.Errorf("page %s location %v outside (0,1]", h.ID, h.Location)
		}
	}
}

func TestQueryRankingOrderAndTruncation(t *testing.T) {
	pages := map[string][]string{
		"p1": {"guitar"},
		"p2": {"guitar", "guitar"},
		"p3": {"guitar", "guitar", "guitar"},
		"p4": {"amp", "guitar"},
		"p5": {"amp", "amp", "guitar"},
		"p6": {"amp", "amp", "amp", "guitar"},
		"p7": {"pickup", "guitar", "guitar"},
	}
	engine := newTestEngine(buildStore(pages))

	result := engine.Query("guitar")

	if result.Amount != 7 {
		t.Errorf("Amount = %d, want 7 (pre-truncation count)", result.Amount)
	}
	if len(result.Data) != 5 {
		t.Fatalf("returned %d hits, want 5", len(result.Data))
	}
	for i := 1; i < len(result.Data); i++ {
		if result.Data[i].Total > result.Data[i-1].Total {
			t.Errorf("hits out of order at %d: %v > %v", i, result.Data[i].Total, result.Data[i-1].Total)
		}
	}
}

func TestQueryEmptyStore(t *testing.T) {
	engine := newTestEngine(index.NewStore(index.NewDictionary()))

	result := engine.Query("anything at all")

	if result.Amount != 0 {
		t.Errorf("Amount = %d, want 0", result.Amount)
	}
	if len(result.Data) != 0 {
		t.Errorf("Data has %d hits, want none", len(result.Data))
	}
}

func TestQueryBlankText(t *testing.T) {
	store := buildStore(map[string][]string{"X": {"guitar"}})
	engine := newTestEngine(store)

	result := engine.Query("   ")

	if result.Amount != 0 || len(result.Data) != 0 {
		t.Errorf("blank query returned %d/%d, want empty", result.Amount, len(result.Data))
	}
}

func TestQueryRegistersUnknownTerms(t *testing.T) {
	store := buildStore(map[string][]string{"X": {"guitar"}})
	dict := store.Dictionary()
	engine := newTestEngine(store)

	before := dict.Len()
	result := engine.Query("theremin")

	if result.Amount != 0 {
		t.Errorf("Amount = %d, want 0 for unknown term", result.Amount)
	}
	if dict.Len() != before+1 {
		t.Errorf("dictionary grew by %d, want 1 (unknown query terms register)", dict.Len()-before)
	}
	// the registered term still matches nothing on a second query
	if again := engine.Query("theremin"); again.Amount != 0 {
		t.Errorf("second query Amount = %d, want 0", again.Amount)
	}
}

func TestQueryUsesAuthority(t *testing.T) {
	store := index.NewStore(index.NewDictionary())
	store.Add("popular", []string{"guitar"}, nil)
	store.Add("obscure", []string{"guitar"}, nil)
	store.Pages()[0].Authority = 1.0
	store.Pages()[1].Authority = 0.2

	engine := newTestEngine(store)
	result := engine.Query("guitar")

	if result.Data[0].ID != "popular" {
		t.Errorf("top hit = %q, want the higher-authority page", result.Data[0].ID)
	}
	if got := result.Data[1].Authority; got != 0.1 {
		t.Errorf("obscure authority component = %v, want 0.1 (0.2 * 0.5)", got)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0.333333, 0.33},
		{0.005, 0.01},
		{1.0, 1.0},
		{2.299999, 2.3},
	}
	for _, c := range cases {
		if got := round2(c.in); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
