package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wikirank/wikirank/internal/search"
)

type stubEngine struct {
	result search.Result
	calls  int
}

func (s *stubEngine) Query(string) search.Result {
	s.calls++
	return s.result
}

func TestSearchReturnsEnvelope(t *testing.T) {
	engine := &stubEngine{result: search.Result{
		Data: []search.Hit{
			{ID: "Electric_guitar", Total: 2.3, Content: 1.0, Location: 0.8, Authority: 0.5},
			{ID: "Guitar", Total: 1.1, Content: 0.5, Location: 0.4, Authority: 0.2},
		},
		Amount:   7,
		Duration: 125 * time.Millisecond,
	}}
	handler := New(engine, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=electric+guitar", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Amount != 7 {
		t.Errorf("Amount = %d, want 7", resp.Amount)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(resp.Data))
	}
	if resp.Data[0].ID != "Electric_guitar" || resp.Data[0].Total != 2.3 {
		t.Errorf("first hit = %+v", resp.Data[0])
	}
	if resp.Duration != 0.13 {
		t.Errorf("Duration = %v, want 0.13", resp.Duration)
	}
	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1", engine.calls)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	engine := &stubEngine{}
	handler := New(engine, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times, want 0", engine.calls)
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	handler := New(&stubEngine{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	rec := httptest.NewRecorder()
	handler.CacheStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "disabled" {
		t.Errorf("status = %q, want disabled", body["status"])
	}
}

func TestCacheInvalidateDisabled(t *testing.T) {
	handler := New(&stubEngine{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil)
	rec := httptest.NewRecorder()
	handler.CacheInvalidate(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
