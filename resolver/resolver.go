package resolver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/gathercache"
	"github.com/packagecore/nugetpm/observability"
	"github.com/packagecore/nugetpm/pmerr"
	"github.com/packagecore/nugetpm/sourcegateway"
	"github.com/packagecore/nugetpm/version"
)

// Resolver picks a consistent set of package identities for a project. One
// Resolver can serve many Resolve calls; each call gets its own
// gathercache.Cache so results never leak between unrelated operations.
type Resolver struct {
	gateway *sourcegateway.Gateway
	cache   *gathercache.Cache
	logger  observability.Logger
}

// New creates a Resolver backed by gateway.
func New(gateway *sourcegateway.Gateway, logger observability.Logger) *Resolver {
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	return &Resolver{gateway: gateway, logger: logger}
}

const maxWalkIterations = 10000

// Resolve computes the full identity set a project should end up with,
// given its installed packages, a set of install/update targets, the
// project's target framework, and the governing policy.
func (r *Resolver) Resolve(ctx context.Context, installed []Installed, targets []Target, fw *frameworks.NuGetFramework, policy Policy) (result *Result, err error) {
	ctx, span := observability.StartDependencyResolutionSpan(ctx, targetSummary(targets), frameworkName(fw))
	defer span.End()

	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		observability.ResolveDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		observability.PackageManagerOperationsTotal.WithLabelValues("resolve", outcome).Inc()
	}()

	r.cache = gathercache.New()

	installedByID := make(map[string]core.PackageIdentity, len(installed))
	for _, ins := range installed {
		installedByID[normalizeID(ins.Identity.ID)] = ins.Identity
	}

	resolvedTargets, err := r.expandTargets(ctx, targets, policy)
	if err != nil {
		return nil, err
	}

	if err := r.checkDowngrades(targets, resolvedTargets, installedByID); err != nil {
		return nil, err
	}

	chosen := make(map[string]core.PackageIdentity)
	pinned := make(map[string]bool) // explicit hard targets
	for _, t := range resolvedTargets {
		id := normalizeID(t.ID)
		chosen[id] = core.NewPackageIdentity(t.ID, t.Version)
		pinned[id] = true
	}
	for id, ident := range installedByID {
		if _, ok := chosen[id]; !ok {
			chosen[id] = ident
		}
	}

	if policy.DependencyBehavior == Ignore {
		return buildResult(chosen, nil), nil
	}

	requirements := make(map[string][]requirement)
	info := make(map[string]*sourcegateway.DependencyInfo)
	walked := make(map[string]string) // normalized id -> normalized version walked

	seeds := make([]string, 0, len(chosen))
	for id := range chosen {
		seeds = append(seeds, id)
	}
	sort.Strings(seeds)

	type frame struct {
		id     string
		parent *node
	}
	stack := make([]frame, 0, len(seeds))
	for i := len(seeds) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: seeds[i], parent: nil})
	}

	iterations := 0
	for len(stack) > 0 {
		iterations++
		if iterations > maxWalkIterations {
			return nil, pmerr.New(pmerr.DependencyConflict, "", "dependency resolution did not converge")
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ident, ok := chosen[f.id]
		if !ok {
			continue
		}
		verKey := ident.Version.ToNormalizedString()
		if walked[f.id] == verKey {
			continue
		}

		if f.parent != nil && f.parent.ancestorIdentity(ident) {
			path := append(f.parent.pathFromRoot(), ident)
			return nil, pmerr.New(pmerr.DependencyConflict, ident.ID,
				fmt.Sprintf("circular dependency detected: %s", describeCycle(identityStrings(path))))
		}

		curNode := &node{Identity: ident, Parent: f.parent}
		walked[f.id] = verKey

		depInfo, err := r.fetchInfo(ctx, ident.ID, ident.Version, fw)
		if err != nil {
			return nil, pmerr.Wrap(pmerr.PackageNotFound, ident.ID, "failed to fetch dependency info", err)
		}
		info[f.id] = depInfo

		deps := depInfo.DependenciesFor(fw)
		sorted := make([]core.PackageDependency, len(deps))
		copy(sorted, deps)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

		for _, dep := range sorted {
			depKey := normalizeID(dep.ID)
			requirements[depKey] = append(requirements[depKey], requirement{FromID: ident.ID, Range: dep.VersionRange})

			existing, has := chosen[depKey]
			if !has {
				picked, err := r.pickInitial(ctx, dep.ID, dep.VersionRange, installedByID[depKey], policy)
				if err != nil {
					return nil, err
				}
				chosen[depKey] = core.NewPackageIdentity(dep.ID, picked)
				stack = append(stack, frame{id: depKey, parent: curNode})
				continue
			}

			if dep.VersionRange.SatisfiesPolicy(existing.Version) {
				if curNode.ancestorIdentity(existing) {
					path := append(curNode.pathFromRoot(), existing)
					return nil, pmerr.New(pmerr.DependencyConflict, existing.ID,
						fmt.Sprintf("circular dependency detected: %s", describeCycle(identityStrings(path))))
				}
				if walked[depKey] != existing.Version.ToNormalizedString() {
					stack = append(stack, frame{id: depKey, parent: curNode})
				}
				continue
			}

			if pinned[depKey] {
				// Parent-upgrade rule: the package currently being walked
				// (ident) must move to the lowest version whose own
				// requirement on depID admits the pinned version.
				upgraded, err := r.tryUpgradeParent(ctx, ident, dep.ID, existing.Version, fw, policy, installedByID[normalizeID(ident.ID)])
				if err != nil {
					return nil, err
				}
				if upgraded == nil {
					return nil, pmerr.New(pmerr.DependencyConflict, ident.ID,
						fmt.Sprintf("%s requires %s %s but %s is pinned to %s and no version of %s satisfies both",
							ident.ID, dep.ID, dep.VersionRange, dep.ID, existing.Version, ident.ID))
				}
				newID := normalizeID(ident.ID)
				chosen[newID] = *upgraded
				delete(walked, newID)
				stack = append(stack, frame{id: newID, parent: f.parent})
				break
			}

			// depID is a soft (non-pinned) choice; re-pick it against the
			// full accumulated requirement set.
			repicked, err := r.repick(ctx, dep.ID, requirements[depKey], installedByID[depKey], policy)
			if err != nil {
				return nil, pmerr.New(pmerr.DependencyConflict, dep.ID,
					fmt.Sprintf("no version of %s satisfies: %s", dep.ID, describeRequirements(requirements[depKey])))
			}
			chosen[depKey] = core.NewPackageIdentity(dep.ID, repicked)
			delete(walked, depKey)
			stack = append(stack, frame{id: depKey, parent: curNode})
		}
	}

	return buildResult(chosen, info), nil
}

func (r *Resolver) expandTargets(ctx context.Context, targets []Target, policy Policy) ([]Target, error) {
	out := make([]Target, len(targets))
	for i, t := range targets {
		if t.Version != nil {
			out[i] = t
			continue
		}
		allowed := policy.AllowedVersions[normalizeID(t.ID)]
		latest, err := r.gateway.GetLatestVersion(ctx, t.ID, allowed, policy.IncludePrerelease)
		if err != nil {
			return nil, err
		}
		out[i] = Target{ID: t.ID, Version: latest}
	}
	return out, nil
}

func (r *Resolver) checkDowngrades(original, resolved []Target, installedByID map[string]core.PackageIdentity) error {
	for i, orig := range original {
		if orig.Version != nil {
			continue
		}
		cur, ok := installedByID[normalizeID(orig.ID)]
		if !ok {
			continue
		}
		switch cur.Version.Compare(resolved[i].Version) {
		case 0:
			return pmerr.New(pmerr.PackageAlreadyInstalled, orig.ID,
				fmt.Sprintf("%s %s is already installed", orig.ID, cur.Version))
		default:
			if resolved[i].Version.LessThan(cur.Version) {
				return pmerr.New(pmerr.UnexpectedDowngrade, orig.ID,
					fmt.Sprintf("resolved version %s is lower than installed version %s", resolved[i].Version, cur.Version))
			}
		}
	}
	return nil
}

// pickInitial chooses the first version for an id encountered only as a
// dependency (never before seen in chosen).
func (r *Resolver) pickInitial(ctx context.Context, id string, requiredRange *version.Range, installed core.PackageIdentity, policy Policy) (*version.NuGetVersion, error) {
	candidates, err := r.gateway.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	intersected := requiredRange
	if allowed := policy.AllowedVersions[normalizeID(id)]; allowed != nil {
		if combined, ok := requiredRange.Intersect(allowed); ok {
			intersected = combined
		}
	}
	var installedVersion *version.NuGetVersion
	if installed.Version != nil {
		installedVersion = installed.Version
	}
	filtered := filterCandidates(candidates, intersected, installedVersion, policy)
	picked := pickByBehavior(filtered, installedVersion, policy.DependencyBehavior)
	if picked == nil {
		return nil, pmerr.New(pmerr.VersionNotSatisfied, id,
			fmt.Sprintf("no version satisfies range %s", requiredRange))
	}
	return picked, nil
}

// repick re-selects id's version against the full set of accumulated
// requirements, used when a later-discovered requirement invalidates an
// earlier soft choice.
func (r *Resolver) repick(ctx context.Context, id string, reqs []requirement, installed core.PackageIdentity, policy Policy) (*version.NuGetVersion, error) {
	candidates, err := r.gateway.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}

	var intersected *version.Range
	for _, req := range reqs {
		if req.Range == nil {
			continue
		}
		if intersected == nil {
			intersected = req.Range
			continue
		}
		combined, ok := intersected.Intersect(req.Range)
		if !ok {
			return nil, pmerr.New(pmerr.DependencyConflict, id, describeRequirements(reqs))
		}
		intersected = combined
	}
	if allowed := policy.AllowedVersions[normalizeID(id)]; allowed != nil && intersected != nil {
		if combined, ok := intersected.Intersect(allowed); ok {
			intersected = combined
		}
	}

	var installedVersion *version.NuGetVersion
	if installed.Version != nil {
		installedVersion = installed.Version
	}
	filtered := filterCandidates(candidates, intersected, installedVersion, policy)
	picked := pickByBehavior(filtered, installedVersion, policy.DependencyBehavior)
	if picked == nil {
		return nil, pmerr.New(pmerr.DependencyConflict, id, describeRequirements(reqs))
	}
	return picked, nil
}

// tryUpgradeParent implements spec §4.4 step 5: find the lowest version of
// parentIdent.ID whose dependency requirement on childID admits
// pinnedChildVersion.
func (r *Resolver) tryUpgradeParent(ctx context.Context, parentIdent core.PackageIdentity, childID string, pinnedChildVersion *version.NuGetVersion, fw *frameworks.NuGetFramework, policy Policy, installed core.PackageIdentity) (*core.PackageIdentity, error) {
	candidates, err := r.gateway.ListVersions(ctx, parentIdent.ID)
	if err != nil {
		return nil, err
	}

	var installedVersion *version.NuGetVersion
	if installed.Version != nil {
		installedVersion = installed.Version
	}
	filtered := filterCandidates(candidates, nil, installedVersion, policy)
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].LessThan(filtered[j]) })

	for _, candidate := range filtered {
		if candidate.Compare(parentIdent.Version) <= 0 {
			continue
		}
		depInfo, err := r.fetchInfo(ctx, parentIdent.ID, candidate, fw)
		if err != nil {
			continue
		}
		for _, dep := range depInfo.DependenciesFor(fw) {
			if normalizeID(dep.ID) != normalizeID(childID) {
				continue
			}
			if dep.VersionRange.SatisfiesPolicy(pinnedChildVersion) {
				upgraded := core.NewPackageIdentity(parentIdent.ID, candidate)
				return &upgraded, nil
			}
		}
	}
	return nil, nil
}

func buildResult(chosen map[string]core.PackageIdentity, info map[string]*sourcegateway.DependencyInfo) *Result {
	identities := make([]core.PackageIdentity, 0, len(chosen))
	for _, ident := range chosen {
		identities = append(identities, ident)
	}
	sort.Slice(identities, func(i, j int) bool {
		return normalizeID(identities[i].ID) < normalizeID(identities[j].ID)
	})
	return &Result{Identities: identities, Info: info}
}

func identityStrings(path []core.PackageIdentity) []string {
	out := make([]string, len(path))
	for i, ident := range path {
		out[i] = ident.String()
	}
	return out
}

func targetSummary(targets []Target) string {
	if len(targets) == 0 {
		return ""
	}
	return targets[0].ID
}

func frameworkName(fw *frameworks.NuGetFramework) string {
	if fw == nil {
		return ""
	}
	return fw.String()
}
