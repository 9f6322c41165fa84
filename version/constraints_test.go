package version

import "testing"

func TestConstraints_Satisfies(t *testing.T) {
	pinned := MustParse("1.2.3")

	tests := []struct {
		name      string
		candidate string
		c         Constraints
		want      bool
	}{
		{"no constraint admits anything", "9.9.9", None, true},
		{"ExactMajor matches same major", "1.9.9", ExactMajor, true},
		{"ExactMajor rejects different major", "2.2.3", ExactMajor, false},
		{"ExactMinor rejects different minor", "1.3.3", ExactMinor, false},
		{"ExactPatch rejects different patch", "1.2.4", ExactPatch, false},
		{"combined bits require all", "1.2.3", ExactMajor | ExactMinor | ExactPatch, true},
		{"combined bits reject on any mismatch", "1.2.9", ExactMajor | ExactMinor | ExactPatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Satisfies(pinned, MustParse(tt.candidate))
			if got != tt.want {
				t.Errorf("Satisfies(%s, %s) = %v, want %v", pinned, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestConstraints_Satisfies_ExactRelease(t *testing.T) {
	pinned := MustParse("1.0.0-beta.1")

	if !ExactRelease.Satisfies(pinned, MustParse("1.0.0-beta.1")) {
		t.Error("expected identical prerelease labels to satisfy ExactRelease")
	}
	if ExactRelease.Satisfies(pinned, MustParse("1.0.0-beta.2")) {
		t.Error("expected different prerelease labels to fail ExactRelease")
	}
	if ExactRelease.Satisfies(pinned, MustParse("1.0.0")) {
		t.Error("expected a stable version to fail ExactRelease against a prerelease pin")
	}
}

func TestConstraints_Satisfies_NilVersions(t *testing.T) {
	if ExactMajor.Satisfies(nil, MustParse("1.0.0")) {
		t.Error("expected nil pinned to never satisfy")
	}
	if ExactMajor.Satisfies(MustParse("1.0.0"), nil) {
		t.Error("expected nil candidate to never satisfy")
	}
}

func TestSatisfiesPolicy_CombinesRangeAndConstraints(t *testing.T) {
	pinned := MustParse("1.2.3")
	r := MustParseRange("[1.0.0, 2.0.0)")

	if !SatisfiesPolicy(pinned, MustParse("1.2.9"), r, ExactMajor|ExactMinor) {
		t.Error("expected 1.2.9 to satisfy range and major.minor pin")
	}
	if SatisfiesPolicy(pinned, MustParse("1.3.0"), r, ExactMajor|ExactMinor) {
		t.Error("expected 1.3.0 to fail the minor pin")
	}
	if SatisfiesPolicy(pinned, MustParse("5.0.0"), r, None) {
		t.Error("expected out-of-range candidate to fail even with no constraint bits")
	}
}
