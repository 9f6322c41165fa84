// Package projectsystem defines the contract the applier uses to touch a
// project's build inputs once its manifest and store state have changed:
// direct *.csproj mutation, generalized to an interface so the applier
// isn't tied to one project-file format.
package projectsystem

import (
	"context"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
)

// ContentFile is one file from a package's framework-specific folder
// (lib/<tfm>/... or ref/<tfm>/...) the applier has selected as compatible
// with the project's target framework.
type ContentFile struct {
	// Path is the file's path relative to the package's install directory.
	Path string
	// Group is the top-level folder the file came from ("lib" or "ref").
	Group string
}

// ProjectSystem is implemented by whatever build-file format a project
// uses. On uninstall the applier calls RemoveReferences before it removes
// the manifest entry; on install it calls AddReferences once the package is
// in the store and before the manifest entry is written.
type ProjectSystem interface {
	// AddReferences wires identity's compatible content into the
	// project's build inputs.
	AddReferences(ctx context.Context, identity core.PackageIdentity, files []ContentFile) error
	// RemoveReferences undoes AddReferences for identity.
	RemoveReferences(ctx context.Context, identity core.PackageIdentity) error
	// WriteBindingRedirects regenerates assembly binding redirects.
	// Implementations for project formats that have no concept of binding
	// redirects should simply return nil.
	WriteBindingRedirects(ctx context.Context) error
}

// ExecutionContext carries side effects an apply should surface back to
// the caller, such as files opened for the user's attention.
type ExecutionContext struct {
	// FilesOpened accumulates paths the applier wants shown to the user,
	// e.g. a package's root ReadMe.txt after a direct install.
	FilesOpened []string
}

// RecordFileOpened appends path to FilesOpened. Safe to call on a nil
// *ExecutionContext (a no-op), since ExecutionContext is optional per
// install per spec §4.6.
func (ec *ExecutionContext) RecordFileOpened(path string) {
	if ec == nil {
		return
	}
	ec.FilesOpened = append(ec.FilesOpened, path)
}

// ProjectContext bundles the per-project knobs that gate an install's
// effects on the project system.
type ProjectContext struct {
	// BindingRedirectsDisabled suppresses the WriteBindingRedirects hook
	// for this operation even if the project system supports it.
	BindingRedirectsDisabled bool
	// ExecutionContext is optional; when non-nil and Direct is true on
	// the install this context governs, the applier records readme paths
	// into it.
	ExecutionContext *ExecutionContext
	// Direct marks this install as user-initiated rather than pulled in
	// as a transitive dependency; gates readme surfacing.
	Direct bool
}

// UninstallationContext carries the uninstall-specific policy the
// planner's guard already consulted; the applier receives it for
// ProjectSystem bookkeeping (e.g. deciding whether to also tear down
// dependency references it owns) but does not re-run the guard.
type UninstallationContext struct {
	RemoveDependencies bool
	ForceRemove        bool
}

// SelectCompatibleContent picks the files from available (grouped by
// their framework folder) whose framework is the nearest compatible match
// for target, per spec §4.6: "consult the package's framework-folder
// table... pick the best match... using standard longest-compatible
// framework rules." available maps a parsed framework to the content
// files under that framework's folder; frameworks with no folder at all
// (framework-agnostic content) are keyed by a nil *frameworks.NuGetFramework.
func SelectCompatibleContent(target *frameworks.NuGetFramework, available map[*frameworks.NuGetFramework][]ContentFile) ([]ContentFile, bool) {
	if agnostic, ok := available[nil]; ok && len(available) == 1 {
		return agnostic, true
	}

	candidates := make([]*frameworks.NuGetFramework, 0, len(available))
	for fw := range available {
		if fw != nil {
			candidates = append(candidates, fw)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}

	nearest := frameworks.GetNearest(target, candidates)
	if nearest == nil {
		return nil, false
	}
	return available[nearest], true
}
