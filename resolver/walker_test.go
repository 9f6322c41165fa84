package resolver

import (
	"testing"

	"github.com/packagecore/nugetpm/version"
)

func versions(strs ...string) []*version.NuGetVersion {
	out := make([]*version.NuGetVersion, len(strs))
	for i, s := range strs {
		out[i] = version.MustParse(s)
	}
	return out
}

func TestPickByBehavior(t *testing.T) {
	candidates := versions("1.0.0", "1.1.0", "1.1.5", "1.2.0", "2.0.0")
	installed := version.MustParse("1.1.0")

	tests := []struct {
		name     string
		behavior DependencyBehavior
		want     string
	}{
		{"Lowest picks the floor", Lowest, "1.0.0"},
		{"Highest picks the ceiling", Highest, "2.0.0"},
		{"HighestPatch stays within installed minor", HighestPatch, "1.1.5"},
		{"HighestMinor stays within installed major", HighestMinor, "1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickByBehavior(candidates, installed, tt.behavior)
			if got.String() != tt.want {
				t.Errorf("pickByBehavior(%v) = %s, want %s", tt.behavior, got, tt.want)
			}
		})
	}
}

func TestPickByBehavior_NoInstalledFallsBackToOverall(t *testing.T) {
	candidates := versions("1.0.0", "2.0.0", "3.0.0")
	got := pickByBehavior(candidates, nil, HighestPatch)
	if got.String() != "3.0.0" {
		t.Errorf("expected fallback to highest overall, got %s", got)
	}
}

func TestPickByBehavior_EmptyCandidates(t *testing.T) {
	if got := pickByBehavior(nil, nil, Highest); got != nil {
		t.Errorf("expected nil for no candidates, got %v", got)
	}
}

func TestFilterCandidates_ExcludesOutOfRangeAndPrerelease(t *testing.T) {
	candidates := versions("1.0.0", "1.5.0-beta", "2.0.0", "3.0.0")
	r := version.MustParseRange("[1.0.0, 3.0.0)")

	got := filterCandidates(candidates, r, nil, Policy{})
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates (1.0.0, 2.0.0), got %v", got)
	}
	if got[0].String() != "1.0.0" || got[1].String() != "2.0.0" {
		t.Errorf("expected [1.0.0 2.0.0], got %v", got)
	}
}

func TestFilterCandidates_AdmitsPinnedPrereleaseInstalled(t *testing.T) {
	candidates := versions("1.0.0-beta", "1.0.0")
	installed := version.MustParse("1.0.0-beta")
	r := version.MustParseRange("1.0.0-beta")

	got := filterCandidates(candidates, r, installed, Policy{})
	found := false
	for _, c := range got {
		if c.String() == "1.0.0-beta" {
			found = true
		}
	}
	if !found {
		t.Error("expected the installed prerelease version to remain admissible")
	}
}

func TestFilterCandidates_VersionConstraintsRestrictToExactMajor(t *testing.T) {
	candidates := versions("1.0.0", "1.5.0", "2.0.0")
	installed := version.MustParse("1.0.0")

	got := filterCandidates(candidates, nil, installed, Policy{VersionConstraints: version.ExactMajor})
	if len(got) != 2 {
		t.Fatalf("expected only major-1 versions, got %v", got)
	}
	for _, c := range got {
		if c.Major != 1 {
			t.Errorf("unexpected major %d in %v", c.Major, got)
		}
	}
}
