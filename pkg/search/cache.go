package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-homes/pkg/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	featuredCacheKey = "featured"
	maxLocalEntries  = 10_000
)

type localEntry struct {
	expires time.Time
	data    []byte
}

// CachedClient keeps search pages in redis, fronted by a short lived
// in-process copy. Cache trouble is logged and the search goes through.
type CachedClient struct {
	next     Client
	client   *redis.Client
	ttl      time.Duration
	localTtl time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	memCache  map[string]localEntry
	lastSweep time.Time
}

func NewCachedClient(next Client, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClient{
		next:     next,
		client:   rdb,
		ttl:      ttl,
		localTtl: min(ttl, 5*time.Second),
		logger:   logger,
		memCache: make(map[string]localEntry),
	}
}

// NewRedisClient connects with the same options the cache expects.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func cacheKey(query string) string {
	return "search:" + query
}

func (c *CachedClient) getLocal(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	local, found := c.memCache[key]
	if !found {
		return nil, false
	}
	if local.expires.Before(time.Now()) {
		delete(c.memCache, key)
		return nil, false
	}
	return local.data, true
}

// setLocal drops expired entries at most once per local ttl and stops adding
// new ones while the map is full of live entries.
func (c *CachedClient) setLocal(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if now.Sub(c.lastSweep) >= c.localTtl || len(c.memCache) >= maxLocalEntries {
		c.sweep(now)
	}
	if _, found := c.memCache[key]; !found && len(c.memCache) >= maxLocalEntries {
		return
	}
	c.memCache[key] = localEntry{expires: now.Add(c.localTtl), data: data}
}

func (c *CachedClient) sweep(now time.Time) {
	c.lastSweep = now
	for key, entry := range c.memCache {
		if entry.expires.Before(now) {
			delete(c.memCache, key)
		}
	}
}

func (c *CachedClient) localEntries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.memCache)
}

func (c *CachedClient) get(ctx context.Context, key string, out any) bool {
	data, found := c.getLocal(key)
	if !found {
		var err error
		data, err = c.client.Get(ctx, key).Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
			}
			return false
		}
		c.setLocal(key, data)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		c.logger.Warn("cache entry unreadable", zap.String("key", key), zap.Error(err))
		return false
	}
	cacheHits.Inc()
	return true
}

func (c *CachedClient) set(ctx context.Context, key string, value any) {
	data, err := sonic.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.setLocal(key, data)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedClient) Search(ctx context.Context, query string) (*types.ResultsPage, error) {
	key := cacheKey(query)
	var page types.ResultsPage
	if c.get(ctx, key, &page) {
		return &page, nil
	}
	result, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, result)
	return result, nil
}

func (c *CachedClient) Featured(ctx context.Context) ([]types.Property, error) {
	var items []types.Property
	if c.get(ctx, featuredCacheKey, &items) {
		return items, nil
	}
	items, err := c.next.Featured(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, featuredCacheKey, items)
	return items, nil
}

func (c *CachedClient) Close() error {
	return c.client.Close()
}
