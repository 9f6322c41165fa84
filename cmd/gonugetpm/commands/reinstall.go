package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/packagecore/nugetpm/projectsystem"
	"github.com/packagecore/nugetpm/resolver"
	"github.com/packagecore/nugetpm/version"
)

// NewReinstallCommand creates "gonugetpm reinstall": every installed
// package is uninstalled and reinstalled at its current version,
// dependents-first then dependencies-first, without changing what's
// resolved. Takes no ids; it always targets everything in
// packages.config.
func NewReinstallCommand() *cobra.Command {
	f := &projectFlags{}
	var dependencyBehavior string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reinstall",
		Short: "Reinstall every installed package at its current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			behavior, err := parseDependencyBehavior(dependencyBehavior)
			if err != nil {
				return err
			}

			sess, err := newSession(f)
			if err != nil {
				return err
			}

			start := time.Now()
			ctx := context.Background()
			plan, err := sess.pm.PreviewReinstall(ctx, sess.proj, resolver.Policy{
				DependencyBehavior: behavior,
				VersionConstraints: version.ExactMajor | version.ExactMinor | version.ExactPatch | version.ExactRelease,
			})
			if err != nil {
				return err
			}

			if dryRun {
				return renderPlan(sess, plan, start)
			}

			if err := sess.pm.Execute(ctx, sess.proj, plan, &projectsystem.ProjectContext{}, "reinstall"); err != nil {
				return err
			}
			return renderPlan(sess, plan, start)
		},
	}

	registerProjectFlags(f, cmd.Flags())
	cmd.Flags().StringVar(&dependencyBehavior, "dependency-behavior", "lowest", "Ignore, Lowest, HighestPatch, HighestMinor, or Highest")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without applying it")

	return cmd
}
