package resolver

import (
	"fmt"
	"strings"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/version"
)

// requirement is one range constraint on a package id, contributed either
// by an explicit target pin or by a dependency edge discovered while
// walking the graph.
type requirement struct {
	FromID string // id of the package that declared this requirement ("" for an explicit target)
	Range  *version.Range
	Exact  *core.PackageIdentity // non-nil when FromID == "" and the requirement is a hard pin
}

func describeRequirements(reqs []requirement) string {
	parts := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if r.Exact != nil {
			parts = append(parts, fmt.Sprintf("%s (explicit target)", r.Exact.Version))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s requires %s", r.FromID, r.Range))
	}
	return strings.Join(parts, "; ")
}
