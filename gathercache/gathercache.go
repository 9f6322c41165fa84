// Package gathercache memoizes dependency-info fetches during resolution so
// that a diamond dependency graph queries each (source, identity,
// framework) triple exactly once even when multiple resolver goroutines
// request it concurrently. Grounded on core/resolver's WalkerCache two-tier
// design (in-flight dedupe plus a fast-path result cache), rebuilt on
// golang.org/x/sync/singleflight for the in-flight half instead of a
// hand-rolled operation table.
package gathercache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/packagecore/nugetpm/sourcegateway"
	"github.com/packagecore/nugetpm/version"
)

// Cache deduplicates concurrent fetches of the same (source, package,
// framework) triple and remembers completed results for the remainder of a
// single resolve.
type Cache struct {
	group  singleflight.Group
	result sync.Map // key -> *sourcegateway.DependencyInfo
}

// New creates an empty Cache. A Cache is scoped to one resolution pass; it
// is not meant to outlive it; gathercache.Cache should be rebuilt for each
// Resolver.Resolve call so stale results don't leak across install
// operations.
func New() *Cache {
	return &Cache{}
}

// Key builds the cache key for a (source, package id, version, framework)
// lookup.
func Key(sourceName, id string, v *version.NuGetVersion, framework string) string {
	return fmt.Sprintf("%s|%s|%s|%s", sourceName, id, v.ToNormalizedString(), framework)
}

// GetOrFetch returns the cached dependency info for key, or calls fetch
// exactly once among any number of concurrent callers sharing the same key.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (*sourcegateway.DependencyInfo, error)) (*sourcegateway.DependencyInfo, error) {
	if cached, ok := c.result.Load(key); ok {
		return cached.(*sourcegateway.DependencyInfo), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		info, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.result.Store(key, info)
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sourcegateway.DependencyInfo), nil
}

// Reset clears all cached results, for reuse across resolutions in tests.
func (c *Cache) Reset() {
	c.result.Range(func(key, _ any) bool {
		c.result.Delete(key)
		return true
	})
}
