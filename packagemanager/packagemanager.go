// Package packagemanager is the thin façade that ties Resolver, Planner,
// and Applier together into the install/uninstall/update/restore
// operations a caller actually wants, grounded on core.Client's
// compose-the-pieces-in-one-struct style: it owns no resolution or
// diffing logic of its own, only the sequencing between the three.
package packagemanager

import (
	"context"
	"strings"
	"time"

	"github.com/packagecore/nugetpm/applier"
	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/manifest"
	"github.com/packagecore/nugetpm/observability"
	"github.com/packagecore/nugetpm/planner"
	"github.com/packagecore/nugetpm/projectsystem"
	"github.com/packagecore/nugetpm/resolver"
	"github.com/packagecore/nugetpm/sourcegateway"
	"github.com/packagecore/nugetpm/store"
)

// Project bundles the per-project state a façade call operates on: the
// manifest it reads and writes, the project system it wires references
// into, and the framework that governs dependency and content selection.
type Project struct {
	Manifest        *manifest.Manifest
	ProjectSystem   projectsystem.ProjectSystem
	TargetFramework *frameworks.NuGetFramework
}

// Config holds the shared, solution-scoped collaborators a PackageManager
// composes. Store and Gateway are shared across every project in a
// solution; Logger may be nil.
type Config struct {
	Gateway *sourcegateway.Gateway
	Store   store.FolderStore
	Logger  observability.Logger
}

// PackageManager dispatches to a Resolver and Planner for previews, and
// additionally to an Applier for executions. It holds no per-project
// state itself; every method takes the Project it should act on.
type PackageManager struct {
	gateway  *sourcegateway.Gateway
	resolver *resolver.Resolver
	store    store.FolderStore
	logger   observability.Logger
}

// New builds a PackageManager from cfg.
func New(cfg Config) *PackageManager {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	return &PackageManager{
		gateway:  cfg.Gateway,
		resolver: resolver.New(cfg.Gateway, logger),
		store:    cfg.Store,
		logger:   logger,
	}
}

// PreviewInstall resolves targets against proj's currently installed set
// and returns the ActionPlan that would bring proj to the resolved state,
// without applying it.
func (pm *PackageManager) PreviewInstall(ctx context.Context, proj *Project, targets []resolver.Target, policy resolver.Policy) (*planner.ActionPlan, error) {
	return pm.previewResolved(ctx, proj, targets, policy, false)
}

// PreviewUpdate resolves an update: an empty targets list means "update
// everything installed to its latest permissible version"; otherwise each
// target is resolved the same way PreviewInstall resolves an install
// target (id-only targets pick latest-in-policy, pinned targets pin
// exactly, including downgrades).
func (pm *PackageManager) PreviewUpdate(ctx context.Context, proj *Project, targets []resolver.Target, policy resolver.Policy) (*planner.ActionPlan, error) {
	if len(targets) == 0 {
		entries, err := proj.Manifest.Entries()
		if err != nil {
			return nil, err
		}
		targets = make([]resolver.Target, 0, len(entries))
		for _, e := range entries {
			target := resolver.Target{ID: e.Identity.ID}
			latest, err := pm.gateway.GetLatestVersion(ctx, e.Identity.ID, policy.AllowedVersions[strings.ToLower(e.Identity.ID)], policy.IncludePrerelease)
			if err != nil {
				return nil, err
			}
			// Already at its latest: pin it so the resolver keeps it instead
			// of reporting PackageAlreadyInstalled for an id-only target.
			if latest != nil && latest.Compare(e.Identity.Version) == 0 {
				target.Version = e.Identity.Version
			}
			targets = append(targets, target)
		}
	}
	return pm.previewResolved(ctx, proj, targets, policy, false)
}

// PreviewReinstall resolves and plans the VersionConstraints
// ExactMajor|ExactMinor|ExactPatch|ExactRelease reinstall mode: every
// installed package is uninstalled and reinstalled at its current
// version. policy.VersionConstraints is expected to already carry one of
// those bits; the resolver uses it to keep every pick pinned to what's
// installed.
func (pm *PackageManager) PreviewReinstall(ctx context.Context, proj *Project, policy resolver.Policy) (*planner.ActionPlan, error) {
	entries, err := proj.Manifest.Entries()
	if err != nil {
		return nil, err
	}
	installed := installedFromEntries(entries)
	targets := make([]resolver.Target, 0, len(entries))
	for _, e := range entries {
		targets = append(targets, resolver.Target{ID: e.Identity.ID, Version: e.Identity.Version})
	}

	resolved, err := pm.resolver.Resolve(ctx, installed, targets, proj.TargetFramework, policy)
	if err != nil {
		return nil, err
	}

	oldInfo, err := pm.localDependencyInfo(entries)
	if err != nil {
		return nil, err
	}

	refs := installedRefsFromEntries(entries)
	return planner.BuildReinstallPlan(ctx, proj.Manifest.Path(), refs, resolved, mergeInfo(oldInfo, resolved.Info), proj.TargetFramework), nil
}

// PreviewUninstall computes the uninstall plan for targetID against proj's
// currently installed set, enforcing the dependent guard exactly as
// planner.PreviewUninstall documents. No resolver call is needed: an
// uninstall only ever shrinks the installed set.
func (pm *PackageManager) PreviewUninstall(ctx context.Context, proj *Project, targetID string, removeDependencies, forceRemove bool) (*planner.ActionPlan, error) {
	entries, err := proj.Manifest.Entries()
	if err != nil {
		return nil, err
	}
	info, err := pm.localDependencyInfo(entries)
	if err != nil {
		return nil, err
	}
	refs := installedRefsFromEntries(entries)
	return planner.PreviewUninstall(ctx, proj.Manifest.Path(), refs, info, proj.TargetFramework, targetID, removeDependencies, forceRemove)
}

// previewResolved is the shared install/update path: resolve targets
// against proj's installed set, then diff against the installed set to
// produce an ActionPlan. forceReinstall plumbs through to
// planner.BuildPlan for callers that want a same-version pair emitted
// anyway; none of the exported preview methods currently set it.
func (pm *PackageManager) previewResolved(ctx context.Context, proj *Project, targets []resolver.Target, policy resolver.Policy, forceReinstall bool) (*planner.ActionPlan, error) {
	entries, err := proj.Manifest.Entries()
	if err != nil {
		return nil, err
	}
	installed := installedFromEntries(entries)

	resolved, err := pm.resolver.Resolve(ctx, installed, targets, proj.TargetFramework, policy)
	if err != nil {
		return nil, err
	}

	oldInfo, err := pm.localDependencyInfo(entries)
	if err != nil {
		return nil, err
	}

	refs := installedRefsFromEntries(entries)
	return planner.BuildPlan(ctx, proj.Manifest.Path(), refs, resolved, mergeInfo(oldInfo, resolved.Info), proj.TargetFramework, forceReinstall), nil
}

// Execute applies plan against proj: builds an Applier over proj's
// manifest and project system and runs it. operation names the
// PackageManagerOperationsTotal label this call is counted under
// ("install", "uninstall", "update", or "reinstall"); projectCtx may be
// nil.
func (pm *PackageManager) Execute(ctx context.Context, proj *Project, plan *planner.ActionPlan, projectCtx *projectsystem.ProjectContext, operation string) (err error) {
	start := time.Now()
	pm.logger.InfoContext(ctx, "Executing {Operation} on {Project} ({Count} actions)", operation, proj.Manifest.Path(), len(plan.Actions))

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		observability.PackageManagerOperationsTotal.WithLabelValues(operation, outcome).Inc()
		pm.logger.InfoContext(ctx, "{Operation} on {Project} finished ({Outcome}) in {Elapsed}", operation, proj.Manifest.Path(), outcome, time.Since(start))
	}()

	a := applier.New(proj.Manifest, pm.store, proj.ProjectSystem, pm.gateway, pm.logger)
	err = a.Apply(ctx, plan, projectCtx)
	return err
}

// RestorePackage materializes identity into the shared store without
// touching any manifest. It is a safe no-op if the identity is already
// present; store.Install itself is idempotent per identity.
func (pm *PackageManager) RestorePackage(ctx context.Context, identity core.PackageIdentity) error {
	return pm.store.Install(ctx, identity, func(ctx context.Context) ([]byte, error) {
		return pm.gateway.FetchBytes(ctx, identity.ID, identity.Version)
	})
}
