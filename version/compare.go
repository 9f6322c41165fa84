package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a NuGet version string.
//
// Accepts SemVer 2.0 style versions (2, 3, or 4 numeric segments, with an
// optional "-prerelease" suffix and an optional "+metadata" suffix) and
// legacy 4-part versions (Major.Minor.Build.Revision). A bare single-segment
// version (e.g. "1") is rejected: NuGet requires at least Major.Minor.
func Parse(s string) (*NuGetVersion, error) {
	original := s
	if s == "" {
		return nil, fmt.Errorf("version string is empty")
	}

	metadata := ""
	if idx := strings.IndexByte(s, '+'); idx >= 0 {
		metadata = s[idx+1:]
		s = s[:idx]
	}

	var releaseLabels []string
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		releasePart := s[idx+1:]
		s = s[:idx]
		if releasePart == "" {
			return nil, fmt.Errorf("invalid version %q: empty prerelease label", original)
		}
		releaseLabels = strings.Split(releasePart, ".")
	}

	segments := strings.Split(s, ".")
	if len(segments) < 2 || len(segments) > 4 {
		return nil, fmt.Errorf("invalid version %q: expected 2-4 numeric segments", original)
	}

	nums := make([]int, 4)
	for i, seg := range segments {
		n, err := parseNonNegativeInt(seg)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", original, err)
		}
		nums[i] = n
	}

	v := &NuGetVersion{
		Major:           nums[0],
		Minor:           nums[1],
		Patch:           nums[2],
		Revision:        nums[3],
		IsLegacyVersion: len(segments) == 4,
		ReleaseLabels:   releaseLabels,
		Metadata:        metadata,
		originalString:  original,
	}

	return v, nil
}

func parseNonNegativeInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric segment")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("non-numeric segment %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative segment %q", s)
	}
	return n, nil
}

// MustParse parses a version string, panicking on error.
func MustParse(s string) *NuGetVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsPrerelease reports whether the version has prerelease labels.
func (v *NuGetVersion) IsPrerelease() bool {
	return len(v.ReleaseLabels) > 0
}

// ToNormalizedString returns the canonical string form, ignoring the
// original input string that parsing preserved.
func (v *NuGetVersion) ToNormalizedString() string {
	return v.format()
}

// Compare orders two versions. Returns -1, 0, or 1.
//
// Revision (the legacy 4th segment) only participates in comparison when
// both sides are legacy versions; comparing a legacy version against a
// 3-segment SemVer version ignores Revision entirely.
func (v *NuGetVersion) Compare(other *NuGetVersion) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	if v.IsLegacyVersion && other.IsLegacyVersion {
		if c := compareInt(v.Revision, other.Revision); c != 0 {
			return c
		}
	}
	return comparePrerelease(v.ReleaseLabels, other.ReleaseLabels)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePrerelease implements SemVer 2.0 prerelease precedence: a version
// with no prerelease labels is greater than one with labels; otherwise
// labels are compared left-to-right, numeric identifiers compare
// numerically and sort lower than alphanumeric ones, and a shorter label
// list that is a prefix of a longer one sorts lower.
func comparePrerelease(a, b []string) int {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) == 0 {
		return 1
	}
	if len(b) == 0 {
		return -1
	}

	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareIdentifier(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(a), len(b))
}

func compareIdentifier(a, b string) int {
	an, aErr := strconv.Atoi(a)
	bn, bErr := strconv.Atoi(b)
	aNumeric := aErr == nil
	bNumeric := bErr == nil

	switch {
	case aNumeric && bNumeric:
		return compareInt(an, bn)
	case aNumeric && !bNumeric:
		return -1
	case !aNumeric && bNumeric:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// Equals reports whether two versions are equal, ignoring build metadata.
func (v *NuGetVersion) Equals(other *NuGetVersion) bool {
	if other == nil {
		return false
	}
	return v.Compare(other) == 0
}

// LessThan reports whether v sorts before other.
func (v *NuGetVersion) LessThan(other *NuGetVersion) bool {
	return v.Compare(other) < 0
}

// GreaterThan reports whether v sorts after other.
func (v *NuGetVersion) GreaterThan(other *NuGetVersion) bool {
	return v.Compare(other) > 0
}

// GreaterThanOrEqual reports whether v sorts at or after other.
func (v *NuGetVersion) GreaterThanOrEqual(other *NuGetVersion) bool {
	return v.Compare(other) >= 0
}
