// Command crawl builds a dataset from a seed wiki article: the seed page
// plus every article it links to, written to the configured sink
// (filesystem dataset, postgres, or kafka).
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
	"github.com/wikirank/wikirank/internal/crawler"
	"github.com/wikirank/wikirank/pkg/config"
	"github.com/wikirank/wikirank/pkg/kafka"
	"github.com/wikirank/wikirank/pkg/logger"
	"github.com/wikirank/wikirank/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	title := flag.String("title", "", "seed article title (required)")
	sinkName := flag.String("sink", "fs", "where to store crawled pages: fs, postgres, or kafka")
	flag.Parse()

	if *title == "" {
		fmt.Fprintln(os.Stderr, "usage: crawl -title <article> [-sink fs|postgres|kafka]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink crawler.Sink
	switch *sinkName {
	case "fs":
		sink, err = crawler.NewFSSink(cfg.Corpus.DataDir, *title)
		if err != nil {
			slog.Error("failed to create dataset", "error", err)
			os.Exit(1)
		}
	case "postgres":
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
		sink = store
	case "kafka":
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.PageCrawled)
		defer producer.Close()
		sink = crawler.NewKafkaSink(producer)
	default:
		fmt.Fprintf(os.Stderr, "unknown sink %q\n", *sinkName)
		os.Exit(1)
	}

	slog.Info("starting crawl", "seed", *title, "sink", *sinkName, "base_url", cfg.Crawler.BaseURL)
	saved, err := crawler.New(cfg.Crawler).BuildDataset(ctx, *title, sink)
	if err != nil {
		slog.Error("crawl failed", "pages_saved", saved, "error", err)
		os.Exit(1)
	}
	slog.Info("crawl finished", "pages_saved", saved)
}
