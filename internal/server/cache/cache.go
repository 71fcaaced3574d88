// Package cache is a Redis-backed query result cache. Results are safe to
// cache for the life of the process because the index is immutable after
// startup; the TTL exists so entries age out across redeploys.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/wikirank/wikirank/internal/search"
	"github.com/wikirank/wikirank/pkg/config"
	pkgredis "github.com/wikirank/wikirank/pkg/redis"
)

const keyPrefix = "wikirank:query:"

// QueryCache caches search results by normalized query.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache over an open Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns a cached result for the query, if present.
func (c *QueryCache) Get(ctx context.Context, query string) (*search.Result, bool) {
	key := c.buildKey(query)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result search.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

// Set stores a result under the query's key.
func (c *QueryCache) Set(ctx context.Context, query string, result *search.Result) {
	key := c.buildKey(query)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns a cached result or computes and stores one,
// collapsing concurrent lookups of the same key into a single computation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	computeFn func() *search.Result,
) (*search.Result, bool) {
	if result, ok := c.Get(ctx, query); ok {
		return result, true
	}
	key := c.buildKey(query)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, query); ok {
			return result, nil
		}
		result := computeFn()
		c.Set(ctx, query, result)
		return result, nil
	})
	return val.(*search.Result), false
}

// Invalidate deletes every cached query result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since startup.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the normalized query. Terms are sorted but duplicates
// kept: both signal sums are order-independent, while a repeated query term
// counts twice in the content score.
func (c *QueryCache) buildKey(query string) string {
	terms := strings.Fields(strings.ToLower(query))
	sort.Strings(terms)
	hash := sha256.Sum256([]byte(strings.Join(terms, " ")))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
