// Package server exposes the query engine over HTTP: the search endpoint,
// cache management, and the JSON envelope (data, amount, duration) the
// service has always answered with.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/wikirank/wikirank/internal/analytics"
	"github.com/wikirank/wikirank/internal/search"
	"github.com/wikirank/wikirank/internal/server/cache"
	"github.com/wikirank/wikirank/pkg/logger"
	"github.com/wikirank/wikirank/pkg/metrics"
	"github.com/wikirank/wikirank/pkg/middleware"
)

// QueryEngine answers one query. *search.Engine satisfies it.
type QueryEngine interface {
	Query(text string) search.Result
}

// SearchResponse is the JSON envelope: ranked hits, candidate count before
// truncation, and elapsed seconds rounded to two decimals.
type SearchResponse struct {
	Data     []search.Hit `json:"data"`
	Amount   int          `json:"amount"`
	Duration float64      `json:"duration"`
}

// Handler serves search requests.
type Handler struct {
	engine    QueryEngine
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil.
func New(engine QueryEngine, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		engine:    engine,
		cache:     queryCache,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	var result *search.Result
	cacheHit := false
	if h.cache != nil {
		result, cacheHit = h.cache.GetOrCompute(ctx, query, func() *search.Result {
			res := h.engine.Query(query)
			return &res
		})
	} else {
		res := h.engine.Query(query)
		result = &res
	}

	elapsed := time.Since(start)
	h.observe(result, cacheHit, elapsed)

	log.Info("search completed",
		"query", query,
		"amount", result.Amount,
		"returned", len(result.Data),
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)
	if h.collector != nil {
		eventType := analytics.EventQuery
		if result.Amount == 0 {
			eventType = analytics.EventZeroResult
		}
		h.collector.Track(analytics.QueryEvent{
			Type:       eventType,
			Query:      query,
			Candidates: result.Amount,
			Returned:   len(result.Data),
			LatencyMs:  elapsed.Milliseconds(),
			CacheHit:   cacheHit,
			Timestamp:  time.Now().UTC(),
			RequestID:  middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, SearchResponse{
		Data:     result.Data,
		Amount:   result.Amount,
		Duration: math.Round(result.Duration.Seconds()*100) / 100,
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) observe(result *search.Result, cacheHit bool, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	resultType := "hit"
	if result.Amount == 0 {
		resultType = "zero_result"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	h.metrics.SearchCandidates.Observe(float64(result.Amount))
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache != nil {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
