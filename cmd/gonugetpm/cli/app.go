// Package cli wires the gonugetpm root cobra command, the way
// cmd/gonuget/cli/app.go does for the NuGet-clone CLI it pairs with.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gonugetpm",
	Short: "Flat-manifest (packages.config) package manager",
	Long: `gonugetpm installs, uninstalls, updates, and restores packages against
a project's packages.config manifest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// AddCommand registers cmd under the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
