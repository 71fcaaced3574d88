// Package dataset consumes page-crawled events from Kafka and persists the
// pages to the Postgres corpus store.
package dataset

import (
	"context"
	"log/slog"

	"github.com/wikirank/wikirank/internal/corpus"
	"github.com/wikirank/wikirank/internal/crawler"
	"github.com/wikirank/wikirank/pkg/kafka"
)

// HandlePage returns a message handler that decodes PageCrawledEvents and
// upserts them into the store.
func HandlePage(store *corpus.PGStore) kafka.MessageHandler {
	logger := slog.Default().With("component", "dataset-writer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[crawler.PageCrawledEvent](value)
		if err != nil {
			// malformed payloads are dropped, not retried forever
			logger.Error("dropping undecodable event", "key", string(key), "error", err)
			return nil
		}
		if err := store.Save(ctx, event.Document()); err != nil {
			return err
		}
		logger.Info("page persisted",
			"title", event.Title,
			"words", len(event.Words),
			"links", len(event.Links),
		)
		return nil
	}
}

// Consumer runs the page-crawled consume loop.
type Consumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New wraps a configured Kafka consumer.
func New(consumer *kafka.Consumer) *Consumer {
	return &Consumer{
		consumer: consumer,
		logger:   slog.Default().With("component", "dataset-consumer"),
	}
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("dataset consumer starting")
	return c.consumer.Start(ctx)
}
