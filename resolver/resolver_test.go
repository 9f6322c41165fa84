package resolver

import (
	"context"
	"testing"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/pmerr"
	"github.com/packagecore/nugetpm/sourcegateway"
	"github.com/packagecore/nugetpm/version"
)

var testFramework = frameworks.MustParseFramework("net6.0")

// fakeSource is an in-memory sourcegateway.Source for resolver tests: an id
// maps to every version it has, and to a dependency list per version.
type fakeSource struct {
	versions map[string][]*version.NuGetVersion
	deps     map[string]map[string][]core.PackageDependency // id -> version string -> deps
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		versions: make(map[string][]*version.NuGetVersion),
		deps:     make(map[string]map[string][]core.PackageDependency),
	}
}

func (f *fakeSource) add(id, ver string, deps ...core.PackageDependency) {
	v := version.MustParse(ver)
	f.versions[id] = append(f.versions[id], v)
	if f.deps[id] == nil {
		f.deps[id] = make(map[string][]core.PackageDependency)
	}
	f.deps[id][v.ToNormalizedString()] = deps
}

func dependsOn(id, rangeStr string) core.PackageDependency {
	return core.PackageDependency{ID: id, VersionRange: version.MustParseRange(rangeStr)}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) ListVersions(ctx context.Context, id string) ([]*version.NuGetVersion, error) {
	vs, ok := f.versions[id]
	if !ok {
		return nil, pmerr.New(pmerr.PackageNotFound, id, "unknown package")
	}
	return vs, nil
}

func (f *fakeSource) GetDependencyInfo(ctx context.Context, id string, v *version.NuGetVersion) (*sourcegateway.DependencyInfo, error) {
	deps, ok := f.deps[id][v.ToNormalizedString()]
	if !ok {
		return nil, pmerr.New(pmerr.PackageNotFound, id, "unknown version")
	}
	return &sourcegateway.DependencyInfo{
		Identity: core.NewPackageIdentity(id, v),
		Listed:   true,
		Groups: []core.PackageDependencyGroup{
			{TargetFramework: testFramework, Dependencies: deps},
		},
	}, nil
}

func (f *fakeSource) FetchBytes(ctx context.Context, id string, v *version.NuGetVersion) ([]byte, error) {
	return nil, nil
}

func newTestResolver(src *fakeSource) *Resolver {
	gw := sourcegateway.New(nil)
	gw.AddSource(src)
	return New(gw, nil)
}

func TestResolve_ExpandsTransitiveDependenciesAtHighest(t *testing.T) {
	src := newFakeSource()
	src.add("A", "1.0.0", dependsOn("B", "[1.0.0, )"))
	src.add("B", "1.0.0")
	src.add("B", "2.0.0")

	r := newTestResolver(src)
	result, err := r.Resolve(context.Background(), nil,
		[]Target{{ID: "A"}},
		testFramework, Policy{DependencyBehavior: Highest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := result.byID("A")
	if !ok || a.Version.String() != "1.0.0" {
		t.Errorf("expected A 1.0.0, got %+v ok=%v", a, ok)
	}
	b, ok := result.byID("B")
	if !ok || b.Version.String() != "2.0.0" {
		t.Errorf("expected B resolved to highest (2.0.0), got %+v ok=%v", b, ok)
	}
}

func TestResolve_IgnoreBehaviorSkipsDependencyExpansion(t *testing.T) {
	src := newFakeSource()
	src.add("A", "1.0.0", dependsOn("B", "[1.0.0, )"))
	src.add("B", "1.0.0")

	r := newTestResolver(src)
	result, err := r.Resolve(context.Background(), nil,
		[]Target{{ID: "A", Version: version.MustParse("1.0.0")}},
		testFramework, Policy{DependencyBehavior: Ignore})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Identities) != 1 {
		t.Fatalf("expected only the direct target, got %v", result.Identities)
	}
}

func TestResolve_AlreadyInstalledIDOnlyTarget(t *testing.T) {
	src := newFakeSource()
	src.add("A", "1.0.0")

	r := newTestResolver(src)
	installed := []Installed{{Identity: core.NewPackageIdentity("A", version.MustParse("1.0.0")), Framework: testFramework}}

	_, err := r.Resolve(context.Background(), installed, []Target{{ID: "A"}}, testFramework, Policy{DependencyBehavior: Highest})
	if !pmerr.Is(err, pmerr.PackageAlreadyInstalled) {
		t.Errorf("expected PackageAlreadyInstalled, got %v", err)
	}
}

func TestResolve_UnexpectedDowngradeRefused(t *testing.T) {
	src := newFakeSource()
	src.add("A", "1.0.0")
	src.add("A", "2.0.0")

	r := newTestResolver(src)
	installed := []Installed{{Identity: core.NewPackageIdentity("A", version.MustParse("2.0.0")), Framework: testFramework}}

	// An id-only target with AllowedVersions pinned below the installed
	// version would resolve to a lower version than what's installed.
	policy := Policy{
		DependencyBehavior: Highest,
		AllowedVersions:    map[string]*version.Range{"a": version.MustParseRange("[1.0.0, 2.0.0)")},
	}
	_, err := r.Resolve(context.Background(), installed, []Target{{ID: "A"}}, testFramework, policy)
	if !pmerr.Is(err, pmerr.UnexpectedDowngrade) {
		t.Errorf("expected UnexpectedDowngrade, got %v", err)
	}
}

func TestResolve_ExplicitDowngradeTargetIsAllowed(t *testing.T) {
	src := newFakeSource()
	src.add("A", "1.0.0")
	src.add("A", "2.0.0")

	r := newTestResolver(src)
	installed := []Installed{{Identity: core.NewPackageIdentity("A", version.MustParse("2.0.0")), Framework: testFramework}}

	result, err := r.Resolve(context.Background(), installed,
		[]Target{{ID: "A", Version: version.MustParse("1.0.0")}},
		testFramework, Policy{DependencyBehavior: Highest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := result.byID("A")
	if a.Version.String() != "1.0.0" {
		t.Errorf("expected explicit downgrade to 1.0.0 to succeed, got %s", a.Version)
	}
}

func TestResolve_DependencyConflictBetweenTwoPinnedTargets(t *testing.T) {
	src := newFakeSource()
	src.add("A", "1.0.0", dependsOn("C", "[1.0.0, 2.0.0)"))
	src.add("B", "1.0.0", dependsOn("C", "[2.0.0, 3.0.0)"))
	src.add("C", "1.0.0")
	src.add("C", "2.0.0")

	r := newTestResolver(src)
	_, err := r.Resolve(context.Background(), nil,
		[]Target{
			{ID: "A", Version: version.MustParse("1.0.0")},
			{ID: "B", Version: version.MustParse("1.0.0")},
		},
		testFramework, Policy{DependencyBehavior: Highest})
	if !pmerr.Is(err, pmerr.DependencyConflict) {
		t.Errorf("expected DependencyConflict, got %v", err)
	}
}

func TestResolve_ParentUpgradeReconcilesPinnedChild(t *testing.T) {
	// A 1.0.0 requires C [1.0.0, 2.0.0); A 2.0.0 requires C [2.0.0, 3.0.0).
	// C is pinned to 2.0.0 as an explicit target. The only way to reconcile
	// is to upgrade A to 2.0.0.
	src := newFakeSource()
	src.add("A", "1.0.0", dependsOn("C", "[1.0.0, 2.0.0)"))
	src.add("A", "2.0.0", dependsOn("C", "[2.0.0, 3.0.0)"))
	src.add("C", "1.0.0")
	src.add("C", "2.0.0")

	r := newTestResolver(src)
	result, err := r.Resolve(context.Background(), nil,
		[]Target{
			{ID: "A", Version: version.MustParse("1.0.0")},
			{ID: "C", Version: version.MustParse("2.0.0")},
		},
		testFramework, Policy{DependencyBehavior: Highest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := result.byID("A")
	if a.Version.String() != "2.0.0" {
		t.Errorf("expected A upgraded to 2.0.0 to admit pinned C, got %s", a.Version)
	}
}

func TestResolve_CircularDependencyDetected(t *testing.T) {
	src := newFakeSource()
	src.add("A", "1.0.0", dependsOn("B", "[1.0.0, )"))
	src.add("B", "1.0.0", dependsOn("A", "[1.0.0, )"))

	r := newTestResolver(src)
	_, err := r.Resolve(context.Background(), nil,
		[]Target{{ID: "A", Version: version.MustParse("1.0.0")}},
		testFramework, Policy{DependencyBehavior: Highest})
	if !pmerr.Is(err, pmerr.DependencyConflict) {
		t.Errorf("expected DependencyConflict for a cycle, got %v", err)
	}
}

func TestResolve_LowestBehaviorPicksFloor(t *testing.T) {
	src := newFakeSource()
	src.add("A", "1.0.0", dependsOn("B", "[1.0.0, 3.0.0)"))
	src.add("B", "1.0.0")
	src.add("B", "2.0.0")

	r := newTestResolver(src)
	result, err := r.Resolve(context.Background(), nil,
		[]Target{{ID: "A", Version: version.MustParse("1.0.0")}},
		testFramework, Policy{DependencyBehavior: Lowest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := result.byID("B")
	if b.Version.String() != "1.0.0" {
		t.Errorf("expected Lowest to pick B 1.0.0, got %s", b.Version)
	}
}
