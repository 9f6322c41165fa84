// Package sourcegateway aggregates package metadata across one or more
// configured sources, isolating failures per source with a circuit breaker
// the way core.SourceRepository and resilience.CircuitBreaker do for the
// protocol client.
package sourcegateway

import (
	"context"
	"sort"
	"sync"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/observability"
	"github.com/packagecore/nugetpm/pmerr"
	"github.com/packagecore/nugetpm/resilience"
	"github.com/packagecore/nugetpm/version"
)

// DependencyInfo is the dependency-resolution-relevant slice of package
// metadata: whether the version is listed, and its dependencies per target
// framework. Mirrors core.resolver's PackageDependencyInfo but keyed by a
// concrete parsed version instead of a version string.
type DependencyInfo struct {
	Identity core.PackageIdentity
	Listed   bool
	Groups   []core.PackageDependencyGroup
}

// DependenciesFor returns the dependency list for the nearest compatible
// framework group, or nil if none is compatible.
func (d *DependencyInfo) DependenciesFor(target *frameworks.NuGetFramework) []core.PackageDependency {
	meta := &core.PackageMetadata{DependencyGroups: d.Groups}
	return meta.GetDependenciesForFramework(target)
}

// Source is a single package source: a feed capable of listing versions,
// resolving dependency info, and fetching package bytes.
type Source interface {
	Name() string
	ListVersions(ctx context.Context, id string) ([]*version.NuGetVersion, error)
	GetDependencyInfo(ctx context.Context, id string, v *version.NuGetVersion) (*DependencyInfo, error)
	FetchBytes(ctx context.Context, id string, v *version.NuGetVersion) ([]byte, error)
}

// Gateway aggregates multiple Source instances behind a per-source circuit
// breaker, the way core.RepositoryManager fans requests out to repositories
// except ListVersions unions results instead of erroring on first failure.
type Gateway struct {
	logger observability.Logger

	mu       sync.RWMutex
	sources  []Source
	breakers map[string]*resilience.CircuitBreaker
}

// New creates a Gateway with no sources registered.
func New(logger observability.Logger) *Gateway {
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	return &Gateway{
		logger:   logger,
		breakers: make(map[string]*resilience.CircuitBreaker),
	}
}

// AddSource registers a source, giving it its own circuit breaker.
func (g *Gateway) AddSource(s Source) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sources = append(g.sources, s)
	g.breakers[s.Name()] = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
}

func (g *Gateway) breakerFor(name string) *resilience.CircuitBreaker {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.breakers[name]
}

func (g *Gateway) snapshotSources() []Source {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Source, len(g.sources))
	copy(out, g.sources)
	return out
}

// ListVersions returns the union of versions reported by every healthy
// source, deduplicated and sorted ascending. A source whose breaker is open
// is skipped without being counted as a failure.
func (g *Gateway) ListVersions(ctx context.Context, id string) ([]*version.NuGetVersion, error) {
	sources := g.snapshotSources()
	if len(sources) == 0 {
		return nil, pmerr.New(pmerr.SourceUnavailable, id, "no package sources configured")
	}

	seen := make(map[string]*version.NuGetVersion)
	var lastErr error
	anySucceeded := false

	for _, src := range sources {
		cb := g.breakerFor(src.Name())
		if cb != nil {
			if err := cb.CanExecute(); err != nil {
				g.logger.DebugContext(ctx, "Skipping source {Source} for {PackageID}: circuit open", src.Name(), id)
				continue
			}
		}

		versions, err := src.ListVersions(ctx, id)
		if err != nil {
			if cb != nil {
				cb.RecordFailure()
			}
			g.logger.WarnContext(ctx, "ListVersions failed on source {Source} for {PackageID}: {Error}", src.Name(), id, err)
			lastErr = err
			continue
		}
		if cb != nil {
			cb.RecordSuccess()
		}
		anySucceeded = true

		for _, v := range versions {
			seen[v.ToNormalizedString()] = v
		}
	}

	if !anySucceeded {
		if lastErr != nil {
			return nil, pmerr.Wrap(pmerr.SourceUnavailable, id, "all sources failed or are unavailable", lastErr)
		}
		return nil, pmerr.New(pmerr.SourceUnavailable, id, "all sources have an open circuit breaker")
	}

	result := make([]*version.NuGetVersion, 0, len(seen))
	for _, v := range seen {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LessThan(result[j]) })

	if len(result) == 0 {
		return nil, pmerr.New(pmerr.PackageNotFound, id, "no versions found on any source")
	}

	return result, nil
}

// GetDependencyInfo returns dependency info from the first source that has
// the requested identity, in registration order.
func (g *Gateway) GetDependencyInfo(ctx context.Context, id string, v *version.NuGetVersion) (*DependencyInfo, error) {
	_, span := observability.StartDependencyResolutionSpan(ctx, id, "")
	defer span.End()

	sources := g.snapshotSources()
	var lastErr error

	for _, src := range sources {
		cb := g.breakerFor(src.Name())
		if cb != nil {
			if err := cb.CanExecute(); err != nil {
				continue
			}
		}

		info, err := src.GetDependencyInfo(ctx, id, v)
		if err != nil {
			if cb != nil {
				cb.RecordFailure()
			}
			lastErr = err
			continue
		}
		if cb != nil {
			cb.RecordSuccess()
		}
		return info, nil
	}

	if lastErr != nil {
		return nil, pmerr.Wrap(pmerr.PackageNotFound, id, "no source resolved dependency info", lastErr)
	}
	return nil, pmerr.New(pmerr.PackageNotFound, id, "no source resolved dependency info")
}

// FetchBytes downloads the package archive from the first source willing to
// serve it.
func (g *Gateway) FetchBytes(ctx context.Context, id string, v *version.NuGetVersion) ([]byte, error) {
	sources := g.snapshotSources()
	var lastErr error

	for _, src := range sources {
		cb := g.breakerFor(src.Name())
		if cb != nil {
			if err := cb.CanExecute(); err != nil {
				continue
			}
		}

		data, err := src.FetchBytes(ctx, id, v)
		if err != nil {
			if cb != nil {
				cb.RecordFailure()
			}
			lastErr = err
			continue
		}
		if cb != nil {
			cb.RecordSuccess()
		}
		return data, nil
	}

	if lastErr != nil {
		return nil, pmerr.Wrap(pmerr.SourceUnavailable, id, "failed to fetch package bytes from any source", lastErr)
	}
	return nil, pmerr.New(pmerr.SourceUnavailable, id, "no source could serve package bytes")
}

// GetLatestVersion returns the highest version satisfying policy, following
// restore/version_resolver.go's floating-version selection but reframed
// around a Gateway's aggregated version list.
func (g *Gateway) GetLatestVersion(ctx context.Context, id string, allowedRange *version.Range, includePrerelease bool) (*version.NuGetVersion, error) {
	versions, err := g.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}

	var best *version.NuGetVersion
	for _, v := range versions {
		if v.IsPrerelease() && !includePrerelease {
			if allowedRange == nil || !allowedRange.AdmitsPrerelease(v) {
				continue
			}
		}
		if allowedRange != nil && !allowedRange.Satisfies(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}

	if best == nil {
		return nil, pmerr.New(pmerr.NoLatestVersion, id, "no version satisfies the requested policy")
	}
	return best, nil
}
