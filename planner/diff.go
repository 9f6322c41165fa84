package planner

import (
	"context"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/observability"
	"github.com/packagecore/nugetpm/resolver"
	"github.com/packagecore/nugetpm/sourcegateway"
)

// BuildPlan diffs installed against a resolver.Result and orders the
// difference into an ActionPlan, per spec's install/update diff rules: I∖R
// uninstalls, R∖I or R∩I-with-changed-version installs, R∩I-with-same-version
// is a no-op unless forceReinstall pairs it into an Uninstall+Install.
//
// oldInfo supplies dependency data for ids being removed (the resolver only
// fetched info for ids it kept or considered, not for pure drops); the
// caller is expected to have it on hand from the project's last successful
// apply, or to fetch it lazily for ids missing from resolved.Info.
func BuildPlan(ctx context.Context, projectPath string, installed []InstalledRef, resolved *resolver.Result, oldInfo map[string]*sourcegateway.DependencyInfo, fw *frameworks.NuGetFramework, forceReinstall bool) *ActionPlan {
	_, span := observability.StartPlanSpan(ctx, projectPath, len(installed))
	defer span.End()

	installedByKey := make(map[string]core.PackageIdentity, len(installed))
	for _, ref := range installed {
		installedByKey[normalizeID(ref.Identity.ID)] = ref.Identity
	}
	resolvedByKey := make(map[string]core.PackageIdentity, len(resolved.Identities))
	for _, ident := range resolved.Identities {
		resolvedByKey[normalizeID(ident.ID)] = ident
	}

	var uninstallIDs, installIDs []string
	reinstallSet := make(map[string]bool)

	for key, ident := range installedByKey {
		rIdent, stillPresent := resolvedByKey[key]
		switch {
		case !stillPresent:
			uninstallIDs = append(uninstallIDs, key)
		case !ident.Version.Equals(rIdent.Version):
			uninstallIDs = append(uninstallIDs, key)
			installIDs = append(installIDs, key)
		case forceReinstall:
			uninstallIDs = append(uninstallIDs, key)
			installIDs = append(installIDs, key)
			reinstallSet[key] = true
		}
	}
	for key := range resolvedByKey {
		if _, ok := installedByKey[key]; !ok {
			installIDs = append(installIDs, key)
		}
	}

	combinedOldInfo := oldInfo
	if combinedOldInfo == nil {
		combinedOldInfo = map[string]*sourcegateway.DependencyInfo{}
	}

	uninstallOrder := dependenciesFirstOrder(uninstallIDs, dependencyEdges(uninstallIDs, fw, combinedOldInfo))
	reverse(uninstallOrder)
	installOrder := dependenciesFirstOrder(installIDs, dependencyEdges(installIDs, fw, resolved.Info))

	plan := &ActionPlan{}
	for _, key := range uninstallOrder {
		plan.add(Action{Kind: Uninstall, Identity: installedByKey[key], Framework: fw, Reinstall: reinstallSet[key]})
	}
	for _, key := range installOrder {
		plan.add(Action{Kind: Install, Identity: resolvedByKey[key], Framework: fw, Reinstall: reinstallSet[key]})
	}
	return plan
}

// BuildReinstallPlan emits an Uninstall+Install pair for every installed
// package at its current version, preserving the installed order's
// dependency relationships. It's the VersionConstraints ExactMajor|
// ExactMinor|ExactPatch|ExactRelease mode: the resolver is expected to have
// been run with that bitset so resolved equals installed exactly, which
// makes this a thin wrapper over BuildPlan with forceReinstall forced on.
func BuildReinstallPlan(ctx context.Context, projectPath string, installed []InstalledRef, resolved *resolver.Result, info map[string]*sourcegateway.DependencyInfo, fw *frameworks.NuGetFramework) *ActionPlan {
	return BuildPlan(ctx, projectPath, installed, resolved, info, fw, true)
}
