package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/observability"
	"github.com/packagecore/nugetpm/pmerr"
	"github.com/packagecore/nugetpm/sourcegateway"
)

// PreviewUninstall computes the uninstall-only ActionPlan for removing
// targetID, enforcing the dependent guard: without removeDependencies and
// without forceRemove, any remaining reference that would still depend on
// the target refuses the whole preview with PackageHasDependents.
// removeDependencies expands the removal to the transitive set of
// dependencies that would become orphaned; forceRemove bypasses the guard
// entirely. UninstallPackage executes what this returns, so both paths see
// the same guard.
func PreviewUninstall(ctx context.Context, projectPath string, installed []InstalledRef, info map[string]*sourcegateway.DependencyInfo, fw *frameworks.NuGetFramework, targetID string, removeDependencies, forceRemove bool) (*ActionPlan, error) {
	_, span := observability.StartPlanSpan(ctx, projectPath, len(installed))
	defer span.End()

	targetKey := normalizeID(targetID)
	byKey := make(map[string]core.PackageIdentity, len(installed))
	for _, ref := range installed {
		byKey[normalizeID(ref.Identity.ID)] = ref.Identity
	}
	if _, ok := byKey[targetKey]; !ok {
		return nil, pmerr.New(pmerr.PackageNotFound, targetID, "package is not installed")
	}

	removal := map[string]bool{targetKey: true}
	if removeDependencies {
		removal = expandRemovalSet(installed, info, fw, targetKey)
	}

	if !forceRemove {
		for id := range removal {
			dependents := dependentsOf(installed, info, fw, removal, id)
			if len(dependents) > 0 {
				return nil, pmerr.New(pmerr.PackageHasDependents, id,
					fmt.Sprintf("still required by %s", strings.Join(dependents, ", ")))
			}
		}
	}

	ids := make([]string, 0, len(removal))
	for id := range removal {
		ids = append(ids, id)
	}
	order := dependenciesFirstOrder(ids, dependencyEdges(ids, fw, info))
	reverse(order)

	plan := &ActionPlan{}
	for _, id := range order {
		plan.add(Action{Kind: Uninstall, Identity: byKey[id], Framework: fw})
	}
	return plan, nil
}

// dependentsOf returns the (sorted) ids of installed packages outside
// excluding that declare a dependency on id.
func dependentsOf(installed []InstalledRef, info map[string]*sourcegateway.DependencyInfo, fw *frameworks.NuGetFramework, excluding map[string]bool, id string) []string {
	var dependents []string
	for _, ref := range installed {
		key := normalizeID(ref.Identity.ID)
		if excluding[key] {
			continue
		}
		di := info[key]
		if di == nil {
			continue
		}
		for _, dep := range di.DependenciesFor(fw) {
			if normalizeID(dep.ID) == id {
				dependents = append(dependents, ref.Identity.ID)
				break
			}
		}
	}
	sort.Strings(dependents)
	return dependents
}

// expandRemovalSet grows {root} to include every installed dependency of
// an already-removed package that would otherwise be left with no
// remaining dependent, iterating to a fixed point.
func expandRemovalSet(installed []InstalledRef, info map[string]*sourcegateway.DependencyInfo, fw *frameworks.NuGetFramework, root string) map[string]bool {
	installedKeys := make(map[string]bool, len(installed))
	for _, ref := range installed {
		installedKeys[normalizeID(ref.Identity.ID)] = true
	}

	removal := map[string]bool{root: true}
	for changed := true; changed; {
		changed = false
		for key := range removal {
			di := info[key]
			if di == nil {
				continue
			}
			for _, dep := range di.DependenciesFor(fw) {
				depKey := normalizeID(dep.ID)
				if removal[depKey] || !installedKeys[depKey] {
					continue
				}
				if len(dependentsOf(installed, info, fw, removal, depKey)) > 0 {
					continue
				}
				removal[depKey] = true
				changed = true
			}
		}
	}
	return removal
}
