package analytics

import "time"

// EventType discriminates query analytics events.
type EventType string

const (
	EventQuery      EventType = "query"
	EventZeroResult EventType = "zero_result"
)

// QueryEvent records one served search query.
type QueryEvent struct {
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	Candidates int       `json:"candidates"`
	Returned   int       `json:"returned"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
}
