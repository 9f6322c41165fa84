// Package cli provides the gonuget CLI application framework.
package cli

import (
	"fmt"

	"github.com/packagecore/nugetpm/cmd/gonuget/version"
)

// Version information; main overwrites these with its ldflags-injected values.
var (
	Version = version.Version
	Commit  = version.Commit
	Date    = version.Date
	BuiltBy = "unknown"
)

// GetVersion returns formatted version information
func GetVersion() string {
	return Version
}

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return fmt.Sprintf("gonuget version %s (commit: %s, built: %s, by: %s, go: %s)",
		Version, Commit, Date, BuiltBy, version.GoVersion)
}
