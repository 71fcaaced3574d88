// Package tracing times multi-phase operations such as the index build
// (corpus load, term registration, authority solve) and logs the resulting
// span tree as structured JSON via slog.
package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"
)

type contextKey string

const spanKey contextKey = "trace_span"

// Span is one timed phase of an operation. Child spans nest under it.
type Span struct {
	Name     string
	TraceID  string
	Start    time.Time
	Duration time.Duration
	Children []*Span
	Attrs    map[string]any
	mu       sync.Mutex
}

// StartSpan creates a root span with a fresh trace ID and stores it in the
// returned context.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	span := &Span{
		Name:    name,
		TraceID: newTraceID(),
		Start:   time.Now(),
		Attrs:   make(map[string]any),
	}
	return context.WithValue(ctx, spanKey, span), span
}

// StartChild creates a span nested under the one in ctx. Without a parent it
// behaves like a root span.
func StartChild(ctx context.Context, name string) (context.Context, *Span) {
	child := &Span{
		Name:  name,
		Start: time.Now(),
		Attrs: make(map[string]any),
	}

	if parent := FromContext(ctx); parent != nil {
		child.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.Children = append(parent.Children, child)
		parent.mu.Unlock()
	} else {
		child.TraceID = newTraceID()
	}

	return context.WithValue(ctx, spanKey, child), child
}

// End records the span's duration.
func (s *Span) End() {
	s.Duration = time.Since(s.Start)
}

// SetAttr attaches a key-value attribute to the span.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// FromContext extracts the current Span from ctx, or nil if none.
func FromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

// Log writes the span and its children to slog, one record per span.
func (s *Span) Log() {
	s.logRecursive(0)
}

func (s *Span) logRecursive(depth int) {
	attrs := []any{
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_ms", s.Duration.Milliseconds(),
		"depth", depth,
	}
	s.mu.Lock()
	for k, v := range s.Attrs {
		attrs = append(attrs, k, v)
	}
	s.mu.Unlock()
	slog.Info("span", attrs...)

	for _, child := range s.Children {
		child.logRecursive(depth + 1)
	}
}

func newTraceID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}
