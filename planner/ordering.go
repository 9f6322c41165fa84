package planner

import (
	"sort"

	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/sourcegateway"
)

// dependencyEdges restricts each id's dependency list to the other ids in
// the same set, producing the subgraph the planner actually needs to order.
// Missing info entries are treated as leaves (no known dependencies).
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
			depKey := normalizeID(dep.ID)
			if inSet[depKey] {
				edges[id] = append(edges[id], depKey)
			}
		}
	}
	return edges
}

// dependenciesFirstOrder returns ids ordered so that, for every edge id ->
// dep in edges, dep appears before id. Ties are broken alphabetically for
// determinism. A cycle (which shouldn't reach the planner; the resolver
// rejects those) is broken by visiting each id at most once.
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

// reverse reverses ids in place, turning a dependencies-first order into a
// dependents-first one over the same DAG.
func reverse(ids []string) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
