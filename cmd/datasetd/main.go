// Command datasetd consumes page-crawled events from Kafka and persists
// the pages to the Postgres corpus store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wikirank/wikirank/internal/corpus"
	"github.com/wikirank/wikirank/internal/dataset"
	"github.com/wikirank/wikirank/pkg/config"
	"github.com/wikirank/wikirank/pkg/kafka"
	"github.com/wikirank/wikirank/pkg/logger"
	"github.com/wikirank/wikirank/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting dataset writer", "topic", cfg.Kafka.Topics.PageCrawled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgClient, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgClient.Close()

	store := corpus.NewPGStore(pgClient)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	consumer := dataset.New(kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.PageCrawled,
		dataset.HandlePage(store),
	))

	slog.Info("dataset writer ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.PageCrawled,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}

	slog.Info("dataset writer stopped")
}
