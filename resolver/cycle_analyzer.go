package resolver

import "strings"

// describeCycle formats the ancestor chain that closed a cycle, for the
// DependencyConflict message. path is root-to-node order; the repeated
// identity is both the first and last element.
func describeCycle(path []string) string {
	return strings.Join(path, " -> ")
}
