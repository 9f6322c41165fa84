// Package planner turns an installed set and a resolver.Result into an
// ordered sequence of uninstall/install actions, per the flat-manifest
// diff-then-topologically-sort rules. It never touches a manifest or the
// filesystem; that belongs to the applier.
package planner

import (
	"strings"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/observability"
)

// ActionKind distinguishes the two things a plan can ask the applier to do.
type ActionKind int

const (
	// Uninstall removes a PackageReference and, if no other project in the
	// solution still references the identity, the store copy.
	Uninstall ActionKind = iota
	// Install adds a PackageReference and materializes the identity into
	// the store if it isn't already present.
	Install
)

func (k ActionKind) String() string {
	if k == Uninstall {
		return "Uninstall"
	}
	return "Install"
}

// Action is one step of an ActionPlan.
type Action struct {
	Kind      ActionKind
	Identity  core.PackageIdentity
	Framework *frameworks.NuGetFramework
	// Reinstall marks an Install that pairs with an Uninstall of the same
	// id at the same version, emitted for the reinstall/ExactMajor..
	// VersionConstraints mode rather than a real version change.
	Reinstall bool
}

// ActionPlan is the ordered list of actions the applier executes. Order is
// significant: all uninstalls precede all installs, uninstalls are
// dependents-first, installs are dependencies-first.
type ActionPlan struct {
	Actions []Action
}

func (p *ActionPlan) add(a Action) {
	p.Actions = append(p.Actions, a)
	observability.PlanActionsTotal.WithLabelValues(strings.ToLower(a.Kind.String())).Inc()
}

// IsEmpty reports whether the plan has no actions.
func (p *ActionPlan) IsEmpty() bool {
	return len(p.Actions) == 0
}
