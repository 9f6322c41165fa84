// Package resolver produces a consistent set of package identities for a
// project given its currently installed packages, a set of install/update
// targets, and a policy bundle. It is the flat-manifest replacement for
// core/resolver's PackageReference/lock-file transitive walker: the
// candidate-universe-then-pick-then-reconcile algorithm and the
// stack-based traversal idiom are carried over from there, rewritten
// around per-id version selection instead of full-graph SAT resolution.
package resolver

import (
	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/sourcegateway"
	"github.com/packagecore/nugetpm/version"
)

// DependencyBehavior governs which in-range version of a dependency the
// resolver prefers.
type DependencyBehavior int

const (
	// Ignore installs only the direct targets; dependencies are not expanded.
	Ignore DependencyBehavior = iota
	// Lowest picks the smallest candidate satisfying the intersected range.
	Lowest
	// HighestPatch picks the greatest candidate sharing the installed major.minor.
	HighestPatch
	// HighestMinor picks the greatest candidate sharing the installed major.
	HighestMinor
	// Highest picks the greatest candidate in the intersected range.
	Highest
)

func (b DependencyBehavior) String() string {
	switch b {
	case Ignore:
		return "Ignore"
	case Lowest:
		return "Lowest"
	case HighestPatch:
		return "HighestPatch"
	case HighestMinor:
		return "HighestMinor"
	case Highest:
		return "Highest"
	default:
		return "Unknown"
	}
}

// Target is either a pinned identity (Version != nil) or an id-only
// "install latest" request (Version == nil).
type Target struct {
	ID      string
	Version *version.NuGetVersion
}

func (t Target) String() string {
	if t.Version == nil {
		return t.ID + " (latest)"
	}
	return t.ID + " " + t.Version.String()
}

// Policy bundles the per-operation resolution settings (spec's
// ResolutionContext, minus the GatherCache which the Resolver owns
// directly).
type Policy struct {
	DependencyBehavior DependencyBehavior
	IncludePrerelease  bool
	IncludeUnlisted    bool
	VersionConstraints version.Constraints
	// AllowedVersions maps a lowercase package id to the range the
	// manifest pins that id to, derived from PackageReference.AllowedVersions.
	AllowedVersions map[string]*version.Range
}

// Installed describes one currently-installed reference, as the resolver
// needs to see it: identity plus the containing project's framework.
type Installed struct {
	Identity  core.PackageIdentity
	Framework *frameworks.NuGetFramework
}

// Result is the resolver's output: the full set of identities the project
// should end up with, plus the dependency info fetched for each so the
// planner can compute ordering without refetching.
type Result struct {
	Identities []core.PackageIdentity
	Info       map[string]*sourcegateway.DependencyInfo // keyed by lowercase id
}

// byID returns the identity for id (case-insensitive), if present.
func (r *Result) byID(id string) (core.PackageIdentity, bool) {
	key := normalizeID(id)
	for _, ident := range r.Identities {
		if normalizeID(ident.ID) == key {
			return ident, true
		}
	}
	return core.PackageIdentity{}, false
}

func normalizeID(id string) string {
	return lowerASCII(id)
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
