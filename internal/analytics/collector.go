// Package analytics ships query events to Kafka on a buffered channel so
// the request path never blocks on the broker.
package analytics

import (
	"context"
	"log/slog"

	"github.com/wikirank/wikirank/pkg/kafka"
)

// Collector buffers events and publishes them from a background goroutine.
// Track drops events when the buffer is full rather than stalling a query.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan QueryEvent
	logger   *slog.Logger
	done     chan struct{}
}

// NewCollector creates a Collector with the given buffer size.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan QueryEvent, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publishing goroutine.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event, dropping it if the buffer is full.
func (c *Collector) Track(event QueryEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("query event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the publisher to finish.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event QueryEvent) {
	err := c.producer.Publish(ctx, kafka.Event{
		Key:   string(event.Type),
		Value: event,
	})
	if err != nil {
		c.logger.Error("failed to publish query event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
