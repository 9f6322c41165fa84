package planner

import (
	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
)

// InstalledRef is one currently-installed reference as the planner needs to
// see it: identity plus the project's target framework, which selects which
// dependency group governs ordering and the dependent guard.
type InstalledRef struct {
	Identity  core.PackageIdentity
	Framework *frameworks.NuGetFramework
}

func normalizeID(id string) string {
	b := []byte(id)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
