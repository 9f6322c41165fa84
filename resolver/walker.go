package resolver

import (
	"context"
	"sort"

	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/gathercache"
	"github.com/packagecore/nugetpm/sourcegateway"
	"github.com/packagecore/nugetpm/version"
)

// fetchInfo resolves dependency info for one identity, going through the
// gather cache so concurrent walkers sharing a Resolver's cache fetch the
// same (id, version, framework) triple exactly once.
func (r *Resolver) fetchInfo(ctx context.Context, id string, v *version.NuGetVersion, fw *frameworks.NuGetFramework) (*sourcegateway.DependencyInfo, error) {
	fwName := ""
	if fw != nil {
		fwName = fw.String()
	}
	key := gathercache.Key("gateway", id, v, fwName)
	return r.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*sourcegateway.DependencyInfo, error) {
		return r.gateway.GetDependencyInfo(ctx, id, v)
	})
}

// admitsPrerelease reports whether candidate may be considered at all under
// policy, independent of range satisfaction: a prerelease candidate is only
// a candidate if prerelease is globally allowed, it's the pinned installed
// version, or the intersected range explicitly admits it.
func admitsPrerelease(candidate, installed *version.NuGetVersion, includePrerelease bool, intersected *version.Range) bool {
	if !candidate.IsPrerelease() {
		return true
	}
	if includePrerelease {
		return true
	}
	if installed != nil && installed.Equals(candidate) {
		return true
	}
	if intersected != nil && intersected.AdmitsPrerelease(candidate) {
		return true
	}
	return false
}

// filterCandidates narrows the full version list for id down to those
// admissible under the intersected range requirement, the reinstall
// VersionConstraints bitset (if an installed baseline exists), and the
// prerelease policy.
func filterCandidates(candidates []*version.NuGetVersion, intersected *version.Range, installed *version.NuGetVersion, policy Policy) []*version.NuGetVersion {
	out := make([]*version.NuGetVersion, 0, len(candidates))
	for _, c := range candidates {
		if intersected != nil && !intersected.Satisfies(c) {
			continue
		}
		if !admitsPrerelease(c, installed, policy.IncludePrerelease, intersected) {
			continue
		}
		if installed != nil && policy.VersionConstraints != version.None {
			if !policy.VersionConstraints.Satisfies(installed, c) {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

// pickByBehavior selects one candidate from an already-filtered, ascending
// list according to the dependency behavior, per spec §4.4 step 3.
func pickByBehavior(candidates []*version.NuGetVersion, installed *version.NuGetVersion, behavior DependencyBehavior) *version.NuGetVersion {
	if len(candidates) == 0 {
		return nil
	}

	switch behavior {
	case Lowest:
		return candidates[0]
	case Highest, Ignore:
		return candidates[len(candidates)-1]
	case HighestPatch:
		return highestSharing(candidates, installed, true)
	case HighestMinor:
		return highestSharing(candidates, installed, false)
	default:
		return candidates[len(candidates)-1]
	}
}

// highestSharing picks the greatest candidate sharing the installed
// version's major (and, if requireMinor, minor) segment, falling back to
// the greatest candidate overall when none share it or there is no
// installed baseline.
func highestSharing(candidates []*version.NuGetVersion, installed *version.NuGetVersion, requireMinor bool) *version.NuGetVersion {
	if installed != nil {
		var best *version.NuGetVersion
		for _, c := range candidates {
			if c.Major != installed.Major {
				continue
			}
			if requireMinor && c.Minor != installed.Minor {
				continue
			}
			if best == nil || c.GreaterThan(best) {
				best = c
			}
		}
		if best != nil {
			return best
		}
	}
	return candidates[len(candidates)-1]
}
