// Package crawler builds a corpus by downloading a seed wiki article and
// every article it links to, cleaning the prose and link set of each page,
// and handing the result to a pluggable storage sink.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/wikirank/wikirank/internal/corpus"
	"github.com/wikirank/wikirank/pkg/config"
	apperrors "github.com/wikirank/wikirank/pkg/errors"
	"github.com/wikirank/wikirank/pkg/resilience"
)

const userAgent = "wikirank-crawler/1.0"

// Crawler fetches and parses wiki articles with rate limiting and retry.
type Crawler struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Crawler from the crawler configuration.
func New(cfg config.CrawlerConfig) *Crawler {
	return &Crawler{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		logger:  slog.Default().With("component", "crawler"),
	}
}

// Fetch downloads and parses a single article by decoded title.
func (c *Crawler) Fetch(ctx context.Context, title string) (corpus.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return corpus.Document{}, fmt.Errorf("rate limiter: %w", err)
	}

	pageURL := c.baseURL + wikiPrefix + url.PathEscape(title)
	var parsed *ParsedPage
	err := resilience.Retry(ctx, "fetch-page", resilience.RetryConfig{}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", pageURL, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return apperrors.Newf(apperrors.ErrPageUnavailable, resp.StatusCode,
				"fetching %s: status %d", pageURL, resp.StatusCode)
		}

		parsed, err = ParsePage(resp.Body)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", pageURL, err)
		}
		return nil
	})
	if err != nil {
		return corpus.Document{}, err
	}

	return corpus.Document{
		Title: title,
		Words: parsed.Words,
		Links: parsed.Links,
	}, nil
}

// BuildDataset fetches the seed article and then every article the seed
// links to, saving each page through the sink. Pages that fail to download
// or parse are logged and skipped so one bad article does not lose the
// dataset. It returns the number of pages saved.
func (c *Crawler) BuildDataset(ctx context.Context, seed string, sink Sink) (int, error) {
	start := time.Now()

	first, err := c.Fetch(ctx, seed)
	if err != nil {
		return 0, fmt.Errorf("fetching seed page %q: %w", seed, err)
	}
	if err := sink.Save(ctx, first); err != nil {
		return 0, fmt.Errorf("saving seed page %q: %w", seed, err)
	}
	c.logger.Info("seed page crawled", "title", seed, "outlinks", len(first.Links))

	saved := 1
	for i, link := range first.Links {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		doc, err := c.Fetch(ctx, link)
		if err != nil {
			c.logger.Warn("skipping page", "title", link, "error", err)
			continue
		}
		if err := sink.Save(ctx, doc); err != nil {
			c.logger.Warn("failed to save page", "title", link, "error", err)
			continue
		}
		saved++
		c.logger.Info("page crawled",
			"title", link,
			"progress", fmt.Sprintf("%d/%d", i+1, len(first.Links)),
			"words", len(doc.Words),
			"outlinks", len(doc.Links),
		)
	}

	c.logger.Info("dataset complete",
		"seed", seed,
		"pages", saved,
		"duration", time.Since(start).Round(time.Second).String(),
	)
	return saved, nil
}
