package server

import (
	"context"
	"sync"
	"time"

	"framemap/internal/fusion"
)

// cacheKey identifies one resolution scope.
type cacheKey struct {
	IncludeIframes bool
	MaxDepth       int
}

type cacheEntry struct {
	tree      *fusion.ResolvedTree
	timestamp time.Time
}

// treeCache is a TTL cache for resolved trees. Tool calls arrive in bursts
// (resolve, then xpath or click against the result); re-resolving the page
// for each would triple the protocol round-trips. A ttl of 0 disables
// caching.
type treeCache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration
}

func newTreeCache(ttl time.Duration) *treeCache {
	return &treeCache{
		entries: make(map[cacheKey]cacheEntry),
		ttl:     ttl,
	}
}

// resolve returns a cached tree within TTL, otherwise resolves fresh.
func (c *treeCache) resolve(ctx context.Context, eng *fusion.Engine, opts fusion.Options) (*fusion.ResolvedTree, error) {
	if c.ttl == 0 {
		return eng.Resolve(ctx, opts)
	}

	key := cacheKey{IncludeIframes: opts.IncludeIframes, MaxDepth: opts.MaxDepth}

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && time.Since(entry.timestamp) < c.ttl {
		tree := entry.tree
		c.mu.Unlock()
		return tree, nil
	}
	c.mu.Unlock()

	tree, err := eng.Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{tree: tree, timestamp: time.Now()}
	c.mu.Unlock()

	return tree, nil
}

// invalidateAll clears the cache. Called after any input dispatch, which may
// change the page.
func (c *treeCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}
