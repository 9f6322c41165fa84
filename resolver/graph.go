package resolver

import "github.com/packagecore/nugetpm/core"

// Disposition tracks why a node did or didn't make it into the resolved
// set, mirroring core/resolver's Disposition enum but over identities
// instead of library ranges.
type Disposition int

const (
	// DispositionAcceptable is a node with no detected conflict.
	DispositionAcceptable Disposition = iota
	// DispositionCycle marks a node that closes a cycle back to an ancestor identity.
	DispositionCycle
	// DispositionConflict marks a node whose requirement could not be
	// reconciled with another requirement on the same id.
	DispositionConflict
)

// node is one identity in the dependency tree built while resolving, used
// for cycle and conflict reporting. Modeled on identities rather than ids
// per spec §9: cycles are only genuine when the same identity recurs, not
// merely the same id at different versions.
type node struct {
	Identity    core.PackageIdentity
	Parent      *node
	Children    []*node
	Disposition Disposition
}

// pathFromRoot returns the chain of identities from the tree root to n,
// inclusive, for error messages.
func (n *node) pathFromRoot() []core.PackageIdentity {
	if n == nil {
		return nil
	}
	var path []core.PackageIdentity
	for cur := n; cur != nil; cur = cur.Parent {
		path = append([]core.PackageIdentity{cur.Identity}, path...)
	}
	return path
}

// ancestorIdentity reports whether id already appears among n's ancestors
// (including n itself), which is how a cycle is detected during the
// stack-based walk.
func (n *node) ancestorIdentity(id core.PackageIdentity) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Identity.Equals(id) {
			return true
		}
	}
	return false
}
