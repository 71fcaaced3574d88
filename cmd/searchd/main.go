// Command searchd loads a crawled corpus, builds the in-memory index,
// solves link authority, and serves ranked search queries over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wikirank/wikirank/internal/analytics"
	"github.com/wikirank/wikirank/internal/corpus"
	"github.com/wikirank/wikirank/internal/index"
	"github.com/wikirank/wikirank/internal/search"
	"github.com/wikirank/wikirank/internal/server"
	"github.com/wikirank/wikirank/internal/server/cache"
	"github.com/wikirank/wikirank/pkg/config"
	"github.com/wikirank/wikirank/pkg/health"
	"github.com/wikirank/wikirank/pkg/kafka"
	"github.com/wikirank/wikirank/pkg/logger"
	"github.com/wikirank/wikirank/pkg/metrics"
	"github.com/wikirank/wikirank/pkg/middleware"
	"github.com/wikirank/wikirank/pkg/postgres"
	pkgredis "github.com/wikirank/wikirank/pkg/redis"
	"github.com/wikirank/wikirank/pkg/tracing"
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
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"corpus_backend", cfg.Corpus.Backend,
		"dataset", cfg.Corpus.Dataset,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pgClient *postgres.Client
	var source corpus.Source
	switch cfg.Corpus.Backend {
	case "postgres":
		pgClient, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()
		source = corpus.NewPGStore(pgClient)
	default:
		source = corpus.NewFSSource(cfg.Corpus.DataDir, cfg.Corpus.Dataset)
	}

	store, err := buildIndex(ctx, source, cfg.Ranking, m)
	if err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("query cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	var collector *analytics.Collector
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("query analytics enabled", "topic", cfg.Kafka.Topics.QueryEvents)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if store.Len() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d pages, %d terms", store.Len(), store.Dictionary().Len()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "empty corpus"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	engine := search.NewEngine(store, cfg.Ranking, cfg.Search.MaxResults)
	h := server.New(engine, queryCache, collector, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// buildIndex loads the corpus, ingests every page, and runs the authority
// solver. The returned store is immutable from here on.
func buildIndex(ctx context.Context, source corpus.Source, ranking config.RankingConfig, m *metrics.Metrics) (*index.Store, error) {
	ctx, root := tracing.StartSpan(ctx, "index.build")
	defer root.Log()

	loadCtx, loadSpan := tracing.StartChild(ctx, "corpus.load")
	docs, err := source.Load(loadCtx)
	loadSpan.End()
	if err != nil {
		return nil, err
	}
	loadSpan.SetAttr("pages", len(docs))

	_, ingestSpan := tracing.StartChild(ctx, "corpus.ingest")
	store := index.NewStore(index.NewDictionary())
	for _, doc := range docs {
		store.Add(doc.Title, doc.Words, doc.Links)
	}
	ingestSpan.SetAttr("terms", store.Dictionary().Len())
	ingestSpan.SetAttr("tokens", store.TermCount())
	ingestSpan.End()

	_, solveSpan := tracing.StartChild(ctx, "authority.solve")
	index.NewSolver(ranking).Solve(store)
	solveSpan.SetAttr("iterations", ranking.Iterations)
	solveSpan.End()
	root.End()

	if m != nil {
		m.PagesLoadedTotal.Add(float64(store.Len()))
		m.DictionaryTerms.Set(float64(store.Dictionary().Len()))
		m.AuthorityIterations.Add(float64(ranking.Iterations))
		m.AuthoritySolveTime.Observe(solveSpan.Duration.Seconds())
	}
	return store, nil
}
