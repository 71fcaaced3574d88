package crawler

import (
	"time"

	"github.com/wikirank/wikirank/internal/corpus"
)

// PageCrawledEvent is the Kafka message payload produced for each crawled
// page when the crawler runs with the kafka sink.
type PageCrawledEvent struct {
	Title     string    `json:"title"`
	Words     []string  `json:"words"`
	Links     []string  `json:"links"`
	CrawledAt time.Time `json:"crawled_at"`
}

// NewPageCrawledEvent wraps a document with its crawl timestamp.
func NewPageCrawledEvent(doc corpus.Document) PageCrawledEvent {
	return PageCrawledEvent{
		Title:     doc.Title,
		Words:     doc.Words,
		Links:     doc.Links,
		CrawledAt: time.Now().UTC(),
	}
}

// Document converts the event back to a corpus document.
func (e PageCrawledEvent) Document() corpus.Document {
	return corpus.Document{
		Title: e.Title,
		Words: e.Words,
		Links: e.Links,
	}
}
