package packagemanager

import (
	"sort"
	"strings"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/manifest"
	"github.com/packagecore/nugetpm/packaging"
	"github.com/packagecore/nugetpm/planner"
	"github.com/packagecore/nugetpm/resolver"
	"github.com/packagecore/nugetpm/sourcegateway"
)

// toCoreDependencyGroups converts packaging's nuspec-parsed dependency
// groups to core's resolver-facing shape. The two types are structurally
// identical but distinct (packaging.PackageDependencyGroup also serves
// PackageBuilder's metadata, which has no reason to import core), so this
// is a field-by-field copy rather than a cast.
func toCoreDependencyGroups(groups []packaging.ParsedDependencyGroup) []core.PackageDependencyGroup {
	out := make([]core.PackageDependencyGroup, len(groups))
	for i, g := range groups {
		deps := make([]core.PackageDependency, len(g.Dependencies))
		for j, d := range g.Dependencies {
			deps[j] = core.PackageDependency{
				ID:           d.ID,
				VersionRange: d.VersionRange,
				Include:      d.Include,
				Exclude:      d.Exclude,
			}
		}
		out[i] = core.PackageDependencyGroup{TargetFramework: g.TargetFramework, Dependencies: deps}
	}
	return out
}

// installedFromEntries adapts manifest entries to the shape resolver.Resolve
// expects.
func installedFromEntries(entries []manifest.Entry) []resolver.Installed {
	out := make([]resolver.Installed, 0, len(entries))
	for _, e := range entries {
		out = append(out, resolver.Installed{Identity: e.Identity, Framework: e.TargetFramework})
	}
	return out
}

// installedRefsFromEntries adapts manifest entries to the shape
// planner.BuildPlan/PreviewUninstall expect.
func installedRefsFromEntries(entries []manifest.Entry) []planner.InstalledRef {
	out := make([]planner.InstalledRef, 0, len(entries))
	for _, e := range entries {
		out = append(out, planner.InstalledRef{Identity: e.Identity, Framework: e.TargetFramework})
	}
	return out
}

// localDependencyInfo builds the dependency-info map the planner needs for
// ids already installed, reading each one's nuspec out of the local store
// rather than a source: an installed package's dependency data doesn't
// change just because a resolve is running against it. Entries whose
// content isn't present in the store yet (unrestored) are simply omitted;
// callers treat a missing entry as "no known dependencies," matching
// dependencyEdges' existing missing-info handling.
func (pm *PackageManager) localDependencyInfo(entries []manifest.Entry) (map[string]*sourcegateway.DependencyInfo, error) {
	out := make(map[string]*sourcegateway.DependencyInfo, len(entries))
	for _, e := range entries {
		if !pm.store.IsInstalled(e.Identity) {
			continue
		}
		nuspec, err := pm.store.OpenNuspec(e.Identity)
		if err != nil {
			continue
		}
		groups, err := nuspec.GetDependencyGroups()
		if err != nil {
			continue
		}
		out[strings.ToLower(e.Identity.ID)] = &sourcegateway.DependencyInfo{
			Identity: e.Identity,
			Listed:   true,
			Groups:   toCoreDependencyGroups(groups),
		}
	}
	return out, nil
}

// mergeInfo layers b over a, preferring b's entry for any key present in
// both. Used to combine locally-derived dependency info for ids being
// removed with the resolver's freshly-fetched info for ids it considered.
func mergeInfo(a, b map[string]*sourcegateway.DependencyInfo) map[string]*sourcegateway.DependencyInfo {
	out := make(map[string]*sourcegateway.DependencyInfo, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// GetInstalledPackagesInDependencyOrder returns proj's manifest entries
// ordered so that, for every dependency edge a -> b visible in local store
// metadata, b appears before a. If any entry's store content is missing
// (the project hasn't been restored), it returns an empty list rather than
// guessing at an order that can't be verified.
func (pm *PackageManager) GetInstalledPackagesInDependencyOrder(proj *Project) ([]manifest.Entry, error) {
	entries, err := proj.Manifest.Entries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	for _, e := range entries {
		if !pm.store.IsInstalled(e.Identity) {
			return nil, nil
		}
	}

	info, err := pm.localDependencyInfo(entries)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]manifest.Entry, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		key := strings.ToLower(e.Identity.ID)
		byKey[key] = e
		ids = append(ids, key)
	}

	edges := dependencyEdges(ids, proj.TargetFramework, info)
	order := dependenciesFirstOrder(ids, edges)

	out := make([]manifest.Entry, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out, nil
}

// dependencyEdges and dependenciesFirstOrder below are a direct port of
// planner's unexported ordering helpers (planner/ordering.go): the planner
// orders a diff between two sets, this orders one fixed installed set, but
// the topological-sort-with-alphabetical-tiebreak algorithm is identical.

func dependencyEdges(ids []string, fw *frameworks.NuGetFramework, info map[string]*sourcegateway.DependencyInfo) map[string][]string {
	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}
	edges := make(map[string][]string, len(ids))
	for _, id := range ids {
		di := info[id]
		if di == nil {
			edges[id] = nil
			continue
		}
		for _, dep := range di.DependenciesFor(fw) {
			depKey := strings.ToLower(dep.ID)
			if inSet[depKey] {
				edges[id] = append(edges[id], depKey)
			}
		}
	}
	return edges
}

func dependenciesFirstOrder(ids []string, edges map[string][]string) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	visited := make(map[string]bool, len(ids))
	visiting := make(map[string]bool, len(ids))
	order := make([]string, 0, len(ids))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] || visiting[id] {
			return
		}
		visiting[id] = true
		deps := append([]string(nil), edges[id]...)
		sort.Strings(deps)
		for _, dep := range deps {
			visit(dep)
		}
		visiting[id] = false
		visited[id] = true
		order = append(order, id)
	}
	for _, id := range sorted {
		visit(id)
	}
	return order
}
