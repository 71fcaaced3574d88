package crawler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/wikirank/wikirank/internal/corpus"
	apperrors "github.com/wikirank/wikirank/pkg/errors"
	"github.com/wikirank/wikirank/pkg/kafka"
)

// Sink receives crawled pages. corpus.PGStore satisfies it directly for
// crawling straight into Postgres.
type Sink interface {
	Save(ctx context.Context, doc corpus.Document) error
}

// FSSink writes pages in the dataset directory layout the FSSource reads:
// datasets/<name>/Words/<escaped title> with the body text and a matching
// Links file with one /wiki/ href per line.
type FSSink struct {
	dir string
}

// NewFSSink creates the dataset directories. An existing dataset is an
// error rather than something to silently overwrite.
func NewFSSink(dataDir, dataset string) (*FSSink, error) {
	dir := filepath.Join(dataDir, dataset)
	if _, err := os.Stat(dir); err == nil {
		return nil, apperrors.Newf(apperrors.ErrDatasetExists, 409, "dataset %s already exists", dataset)
	}
	for _, sub := range []string{"Words", "Links"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating dataset directory: %w", err)
		}
	}
	return &FSSink{dir: dir}, nil
}

// Save writes the page's text and link files.
func (s *FSSink) Save(_ context.Context, doc corpus.Document) error {
	name := url.PathEscape(doc.Title)

	text := strings.Join(doc.Words, " ")
	if err := os.WriteFile(filepath.Join(s.dir, "Words", name), []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing page text: %w", err)
	}

	lines := make([]string, 0, len(doc.Links))
	for _, link := range doc.Links {
		lines = append(lines, wikiPrefix+url.PathEscape(link))
	}
	if err := os.WriteFile(filepath.Join(s.dir, "Links", name), []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("writing page links: %w", err)
	}
	return nil
}

// KafkaSink publishes crawled pages as PageCrawledEvents for the dataset
// writer service to persist.
type KafkaSink struct {
	producer *kafka.Producer
}

// NewKafkaSink wraps a producer for the page-crawled topic.
func NewKafkaSink(producer *kafka.Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

// Save publishes the page keyed by title.
func (s *KafkaSink) Save(ctx context.Context, doc corpus.Document) error {
	return s.producer.Publish(ctx, kafka.Event{
		Key:   doc.Title,
		Value: NewPageCrawledEvent(doc),
	})
}
