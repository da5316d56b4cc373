// Package reqcache memoizes fetches for the lifetime of one session and
// dispatches them in bounded batches.
package reqcache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/trackademic/trackademic/schema"
)

// DefaultBatchSize caps how many fetches are in flight at once.
const DefaultBatchSize = 5

// Cache maps request keys to resolved values. Failures are never stored.
// The zero value is not usable; call New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
	gen     uint64 // bumped by Invalidate; fills started before a reset are dropped
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Key joins an operation name and its arguments into a cache key.
func Key(op string, parts ...string) string {
	return op + ":" + strings.Join(parts, "|")
}

// Do returns the cached value for key, or runs factory and caches its result.
//
// Concurrent misses on one key share a single factory call. The call is not
// tied to any one caller: a caller whose ctx ends stops waiting and gets
// ctx.Err(), while the fill completes for the others. Fills started before
// Invalidate are never joined by later callers.
func Do[T any](ctx context.Context, c *Cache, key string, factory func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return as[T](key, v)
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.misses.Add(1)

	gen := c.generation()
	fill := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey(gen, key), func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		res, err := factory(fill)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return as[T](key, r.Val)
	}
}

// flightKey scopes in-flight fills to one cache generation.
func flightKey(gen uint64, key string) string {
	return strconv.FormatUint(gen, 10) + "#" + key
}

func as[T any](key string, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cached value for %q is %T, not %T", key, v, zero)
	}
	return t, nil
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *Cache) store(key string, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.entries[key] = v
}

// Invalidate drops every entry at once.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
	c.gen++
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports entry count and hit/miss counters.
func (c *Cache) Stats() schema.CacheStats {
	return schema.CacheStats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Batched runs fn for indexes 0..n-1 in sequential batches of size.
// A batch runs concurrently and must finish before the next starts. The first
// error of a batch fails the whole call; running siblings are not interrupted.
func Batched(ctx context.Context, size, n int, fn func(ctx context.Context, i int) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < n; start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, n)

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error { return fn(ctx, i) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
