// Package applier executes an ActionPlan against one project: extracting
// packages into the shared store, wiring references into the project
// system, and keeping packages.config in sync. It never decides what to
// do, only how — that's the planner's job.
package applier

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/manifest"
	"github.com/packagecore/nugetpm/observability"
	"github.com/packagecore/nugetpm/packaging"
	"github.com/packagecore/nugetpm/planner"
	"github.com/packagecore/nugetpm/pmerr"
	"github.com/packagecore/nugetpm/projectsystem"
	"github.com/packagecore/nugetpm/sourcegateway"
	"github.com/packagecore/nugetpm/store"
	"github.com/packagecore/nugetpm/version"
)

// currentImplementationVersion is the client version this applier reports
// for the MinClientVersion gate. There's no real "client" here the way
// NuGet.Client has a tool version; this stands in for "the version of this
// package management core."
const currentImplementationVersion = "1.0.0"

// knownPackageTypes are the packageTypes/packageType/@name values this
// applier understands well enough to install. An unrecognized type (e.g. a
// managed-code-conventions extension) fails the MinClientVersion gate the
// same way an unsatisfied minClientVersion does.
var knownPackageTypes = map[string]bool{
	"":           true, // unset defaults to the ordinary dependency type
	"dependency": true,
	"dotnettool": true,
}

// Applier executes ActionPlans against one project's manifest, the shared
// store, and that project's ProjectSystem.
type Applier struct {
	manifest      *manifest.Manifest
	store         store.FolderStore
	projectSystem projectsystem.ProjectSystem
	gateway       *sourcegateway.Gateway
	logger        observability.Logger
}

// New builds an Applier. logger may be nil, in which case log calls are
// discarded.
func New(m *manifest.Manifest, s store.FolderStore, ps projectsystem.ProjectSystem, gw *sourcegateway.Gateway, logger observability.Logger) *Applier {
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	return &Applier{manifest: m, store: s, projectSystem: ps, gateway: gw, logger: logger}
}

// Apply executes plan's actions in order against a's project. projectCtx
// may be nil, in which case binding redirects are written unconditionally
// and no readme paths are recorded. Cancellation is checked before every
// action; an action already underway runs to completion or failure before
// ctx is rechecked.
func (a *Applier) Apply(ctx context.Context, plan *planner.ActionPlan, projectCtx *projectsystem.ProjectContext) error {
	ctx, span := observability.StartApplySpan(ctx, a.manifest.Path(), len(plan.Actions))
	defer span.End()

	start := time.Now()
	a.logger.InfoContext(ctx, "Applying {Count} actions to {Project}", len(plan.Actions), a.manifest.Path())

	for i, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			a.recordOutcome(action.Kind, "cancelled")
			return pmerr.Wrap(pmerr.Cancelled, action.Identity.ID, "apply cancelled before action", err)
		}

		var err error
		switch action.Kind {
		case planner.Uninstall:
			err = a.applyUninstall(ctx, action)
		case planner.Install:
			err = a.applyInstall(ctx, action, projectCtx)
		}

		if err != nil {
			a.recordOutcome(action.Kind, "failure")
			a.logger.ErrorContext(ctx, "Action {Index} ({Kind} {PackageID}) failed: {Error}", i, action.Kind, action.Identity.ID, err)
			return err
		}
		a.recordOutcome(action.Kind, "success")
	}

	a.logger.InfoContext(ctx, "Applied {Count} actions to {Project} in {Elapsed}", len(plan.Actions), a.manifest.Path(), time.Since(start))
	return nil
}

func (a *Applier) recordOutcome(kind planner.ActionKind, outcome string) {
	observability.ApplyActionsTotal.WithLabelValues(strings.ToLower(kind.String()), outcome).Inc()
}

// applyUninstall removes a package's project references, manifest entry,
// and (if this was the last reference) its store directory, in that order,
// so the store directory is only deleted once the manifest no longer lists
// the package.
func (a *Applier) applyUninstall(ctx context.Context, action planner.Action) error {
	entry, found, err := a.manifest.Find(action.Identity.ID)
	if err != nil {
		return err
	}
	if !found {
		return pmerr.New(pmerr.PackageNotFound, action.Identity.ID, "package is not in the manifest")
	}

	if err := a.projectSystem.RemoveReferences(ctx, entry.Identity); err != nil {
		return fmt.Errorf("remove project references for %s: %w", entry.Identity, err)
	}

	a.manifest.Remove(entry.Identity.ID)
	if err := a.manifest.Save(); err != nil {
		return err
	}

	if _, err := a.store.ReleaseAndMaybeDelete(ctx, entry.Identity); err != nil {
		return err
	}
	return nil
}

// applyInstall fetches, extracts, wires, and records one identity. The
// MinClientVersion/packageTypes gate runs against the fetched bytes before
// any mutation — the store, the project system, and the manifest are all
// untouched if the gate fails.
func (a *Applier) applyInstall(ctx context.Context, action planner.Action, projectCtx *projectsystem.ProjectContext) error {
	identity := action.Identity

	data, err := a.gateway.FetchBytes(ctx, identity.ID, identity.Version)
	if err != nil {
		return err
	}

	reader, err := packaging.OpenPackageFromReaderAt(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return pmerr.Wrap(pmerr.PackageNotFound, identity.ID, "failed to open package archive", err)
	}
	defer func() { _ = reader.Close() }()

	nuspec, err := reader.GetNuspec()
	if err != nil {
		return pmerr.Wrap(pmerr.PackageNotFound, identity.ID, "failed to read package metadata", err)
	}
	if err := checkClientCompatibility(identity, nuspec); err != nil {
		return err
	}

	files, err := selectContent(identity, action.Framework, contentByFramework(reader))
	if err != nil {
		return err
	}

	fetch := func(context.Context) ([]byte, error) { return data, nil }
	if err := a.store.Install(ctx, identity, fetch); err != nil {
		return err
	}
	a.store.Acquire(identity)

	if err := a.projectSystem.AddReferences(ctx, identity, files); err != nil {
		return fmt.Errorf("add project references for %s: %w", identity, err)
	}

	if projectCtx != nil && projectCtx.Direct {
		if readme, ferr := reader.GetFile("ReadMe.txt"); ferr == nil {
			projectCtx.ExecutionContext.RecordFileOpened(filepath.Join(a.store.Path(identity), readme.Name))
		}
	}

	a.manifest.Upsert(identity, action.Framework)
	if err := a.manifest.Save(); err != nil {
		return err
	}

	if projectCtx == nil || !projectCtx.BindingRedirectsDisabled {
		if err := a.projectSystem.WriteBindingRedirects(ctx); err != nil {
			return fmt.Errorf("write binding redirects after installing %s: %w", identity, err)
		}
	}

	return nil
}

// checkClientCompatibility implements the MinClientVersion/packageTypes
// gate: a package declaring a higher client version than this
// implementation claims, or a packageType this implementation doesn't
// recognize, fails before any mutation for the action.
func checkClientCompatibility(identity core.PackageIdentity, nuspec *packaging.Nuspec) error {
	if nuspec.Metadata.MinClientVersion != "" {
		required, err := version.Parse(nuspec.Metadata.MinClientVersion)
		if err == nil && required.GreaterThan(version.MustParse(currentImplementationVersion)) {
			return pmerr.New(pmerr.VersionNotSatisfied, identity.ID,
				fmt.Sprintf("package requires client version %s, this implementation reports %s", required, currentImplementationVersion))
		}
	}
	for _, pt := range nuspec.Metadata.PackageTypes {
		if !knownPackageTypes[strings.ToLower(pt.Name)] {
			return pmerr.New(pmerr.VersionNotSatisfied, identity.ID,
				fmt.Sprintf("package declares unsupported package type %q", pt.Name))
		}
	}
	return nil
}
